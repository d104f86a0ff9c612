// Package msa obtains a multiple sequence alignment for a set of records
// from an external aligner.
package msa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/foldswitch/internal/align"
	"github.com/ppiankov/foldswitch/internal/fasta"
	"github.com/ppiankov/foldswitch/internal/model"
)

// ErrAlignment covers aligner failures and unusable alignments.
var ErrAlignment = errors.New("alignment failed")

// Aligner aligns records and returns accession -> gapped sequence
type Aligner interface {
	Name() string
	Align(ctx context.Context, records []model.Record) (map[string]string, error)
}

// NewAligner creates the configured aligner
func NewAligner(cfg model.AlignerConfig, workDir string) (Aligner, error) {
	switch strings.ToLower(cfg.Provider) {
	case "clustalo", "clustal", "":
		return NewClustalOmega(cfg.Binary, workDir, cfg.Threads), nil
	case "file":
		if cfg.AlignmentFile == "" {
			return nil, fmt.Errorf("aligner \"file\" needs an alignment file")
		}
		return NewFileAligner(cfg.AlignmentFile), nil
	default:
		return nil, fmt.Errorf("unknown aligner: %s (supported: clustalo, file)", cfg.Provider)
	}
}

// FileAligner reads a precomputed aligned FASTA file
type FileAligner struct {
	path string
}

// NewFileAligner creates an aligner over path
func NewFileAligner(path string) *FileAligner {
	return &FileAligner{path: path}
}

// Name returns the aligner name
func (a *FileAligner) Name() string {
	return "file"
}

// Align returns the rows of the file for the given records
func (a *FileAligner) Align(ctx context.Context, records []model.Record) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open alignment: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := fasta.Read(f, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAlignment, a.path, err)
	}
	return Rows(rows, records)
}

// Rows keys aligned rows by accession, keeps only the requested records
// and checks that they form a proper alignment.
func Rows(aligned []model.Record, records []model.Record) (map[string]string, error) {
	byAcc := make(map[string]string, len(aligned))
	for _, r := range aligned {
		byAcc[r.Accession] = r.Sequence
	}

	out := make(map[string]string, len(records))
	width := -1
	for _, rec := range records {
		row, ok := byAcc[rec.Accession]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from alignment", ErrAlignment, rec.Accession)
		}
		if width >= 0 && len(row) != width {
			return nil, fmt.Errorf("%w: %s has %d columns, expected %d", ErrAlignment, rec.Accession, len(row), width)
		}
		width = len(row)
		out[rec.Accession] = row
	}
	return out, nil
}

// CheckRow reports an align.ErrLengthMismatch when row, with gaps removed,
// is not rec's own sequence. A stale or foreign alignment would otherwise
// lay labels onto the wrong residues.
func CheckRow(rec model.Record, row string) error {
	residues := strings.ReplaceAll(row, string(align.Gap), "")
	if strings.EqualFold(residues, rec.Sequence) {
		return nil
	}
	return fmt.Errorf("%w: %s: aligned row has %d residues that do not match its %d-residue sequence",
		align.ErrLengthMismatch, rec.Accession, len(residues), len(rec.Sequence))
}
