// Package store keeps comparison runs in a SQLite database.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/foldswitch/internal/model"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrRunNotFound is returned when a run id is unknown.
	ErrRunNotFound = errors.New("run not found")
)

const (
	insertRunSQL = `INSERT INTO run (id, created_at, inputs, categories, predictor, aligner,
		threshold, trim_n, zero_policy, excluded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertScoreSQL = `INSERT INTO score (run_id, idx, accession, name, category, labels, aligned,
		projected, cross_score, same_score, cross_pairs, same_pairs, skipped_pairs, mismatches, candidate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunsSQL = `SELECT r.id, r.created_at, r.categories, r.predictor, r.threshold, r.excluded,
		COUNT(s.accession), COALESCE(SUM(s.candidate), 0)
		FROM run r LEFT JOIN score s ON s.run_id = r.id
		GROUP BY r.id ORDER BY r.created_at DESC, r.id`

	selectScoresSQL = `SELECT accession, COALESCE(name, ''), category, labels, aligned, projected,
		cross_score, same_score, cross_pairs, same_pairs, skipped_pairs, mismatches, candidate
		FROM score WHERE run_id = ? ORDER BY idx`

	runExistsSQL = `SELECT COUNT(*) FROM run WHERE id = ?`

	listSeparator = "\t"
)

// Store wraps the database handle
type Store struct {
	db *sql.DB
}

// RunSummary is one line of the run listing
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Categories []string
	Predictor  string
	Threshold  float64
	Rows       int
	Candidates int
	Excluded   int
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path not specified")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %s: %w", path, err)
	}

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read the schema creation file: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create database schema in: %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport stores the run and one score row per accession in a single
// transaction. A report without a run id gets a fresh one.
func (s *Store) SaveReport(report *model.Report) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(insertRunSQL,
		report.RunID,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		strings.Join(report.Inputs, listSeparator),
		strings.Join(report.Categories, listSeparator),
		report.Predictor,
		report.Aligner,
		report.Threshold,
		report.Trim,
		report.ZeroPolicy,
		len(report.Excluded),
	); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error inserting run %s: %w", report.RunID, err)
	}

	stmt, err := tx.Prepare(insertScoreSQL)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("failed to prepare score insert statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range report.Rows {
		if _, err := stmt.Exec(report.RunID, i, row.Accession, row.Name, row.Category,
			row.Labels, row.Aligned, row.Projected, row.CrossScore, row.SameScore,
			row.CrossPairs, row.SamePairs, row.SkippedPairs, row.Mismatches, row.Candidate); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting score[%d]: %s: %w", i, row.Accession, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Runs lists stored runs, newest first
func (s *Store) Runs() ([]RunSummary, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.Query(selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []RunSummary
	for rows.Next() {
		var (
			r          RunSummary
			created    string
			categories string
		)
		if err := rows.Scan(&r.ID, &created, &categories, &r.Predictor, &r.Threshold,
			&r.Excluded, &r.Rows, &r.Candidates); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", r.ID, created, err)
		}
		r.Categories = splitList(categories)
		list = append(list, r)
	}
	return list, rows.Err()
}

// Scores reads back the rows of one run in their original order
func (s *Store) Scores(runID string) ([]model.Row, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	var n int
	if err := s.db.QueryRow(runExistsSQL, runID).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.Query(selectScoresSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []model.Row
	for rows.Next() {
		var r model.Row
		if err := rows.Scan(&r.Accession, &r.Name, &r.Category, &r.Labels, &r.Aligned, &r.Projected,
			&r.CrossScore, &r.SameScore, &r.CrossPairs, &r.SamePairs, &r.SkippedPairs,
			&r.Mismatches, &r.Candidate); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

func rollbackTransaction(tx *sql.Tx) {
	_ = tx.Rollback()
}
