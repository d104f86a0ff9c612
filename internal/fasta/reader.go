// Package fasta reads UniProt-style FASTA files into records and writes
// records back out for external tools.
package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/foldswitch/internal/model"
)

// ErrBadInput covers malformed files and unusable input paths.
var ErrBadInput = errors.New("bad FASTA input")

// Read parses FASTA records from r and tags them with category.
//
// Headers follow the UniProt layout ">db|ACCESSION|NAME description".
// A header without '|' uses its first word as the accession. Sequence
// lines are concatenated with whitespace removed and upper-cased.
func Read(r io.Reader, category string) ([]model.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		records []model.Record
		current *model.Record
		seq     strings.Builder
		seen    = make(map[string]bool)
		line    int
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Sequence = seq.String()
		records = append(records, *current)
		seq.Reset()
	}

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(text, ">") {
			flush()
			header := strings.TrimSpace(text[1:])
			acc, name := ParseHeader(header)
			if acc == "" {
				return nil, fmt.Errorf("%w: line %d: empty header", ErrBadInput, line)
			}
			if seen[acc] {
				return nil, fmt.Errorf("%w: line %d: duplicate accession %s", ErrBadInput, line, acc)
			}
			seen[acc] = true
			current = &model.Record{
				Accession: acc,
				Name:      name,
				Header:    header,
				Category:  category,
			}
			continue
		}
		if current == nil {
			if strings.TrimSpace(text) == "" {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: sequence data before first header", ErrBadInput, line)
		}
		for _, f := range strings.Fields(text) {
			seq.WriteString(strings.ToUpper(f))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	flush()

	return records, nil
}

// ParseHeader splits a header (without '>') into accession and entry name.
func ParseHeader(header string) (accession, name string) {
	fields := strings.Split(header, "|")
	if len(fields) < 2 {
		words := strings.Fields(header)
		if len(words) == 0 {
			return "", ""
		}
		return words[0], ""
	}
	accession = strings.TrimSpace(fields[1])
	if len(fields) > 2 {
		if words := strings.Fields(fields[2]); len(words) > 0 {
			name = words[0]
		}
	}
	return accession, name
}

// ReadFile reads path, tagging every record with category.
func ReadFile(path, category string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := Read(f, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// CategoryFromPath names a category after the file: "data/GA.fasta" -> "GA".
func CategoryFromPath(path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return "", fmt.Errorf("%w: %s: file names must have extensions", ErrBadInput, path)
	}
	return strings.TrimSuffix(base, ext), nil
}

// LoadPair reads two FASTA files as two categories. Records keep file
// order, first file first. Accessions must be unique across both files.
func LoadPair(pathA, pathB string) ([]model.Record, error) {
	catA, err := CategoryFromPath(pathA)
	if err != nil {
		return nil, err
	}
	catB, err := CategoryFromPath(pathB)
	if err != nil {
		return nil, err
	}
	if catA == catB {
		return nil, fmt.Errorf("%w: %s and %s: file names must be different", ErrBadInput, pathA, pathB)
	}

	a, err := ReadFile(pathA, catA)
	if err != nil {
		return nil, err
	}
	b, err := ReadFile(pathB, catB)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(a))
	for _, r := range a {
		seen[r.Accession] = catA
	}
	for _, r := range b {
		if cat, dup := seen[r.Accession]; dup {
			return nil, fmt.Errorf("%w: accession %s appears in both %s and %s", ErrBadInput, r.Accession, cat, catB)
		}
	}

	return append(a, b...), nil
}
