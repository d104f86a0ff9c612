package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LineWidth is the sequence wrap used when writing.
const LineWidth = 60

// Entry is one sequence to write.
type Entry struct {
	Header   string // Without '>'
	Sequence string
}

// Write writes entries wrapped at width columns; width <= 0 disables
// wrapping.
func Write(w io.Writer, entries []Entry, width int) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, ">%s\n", e.Header); err != nil {
			return err
		}
		seq := e.Sequence
		w := width
		if w <= 0 {
			w = len(seq)
		}
		for len(seq) > 0 {
			n := min(w, len(seq))
			if _, err := fmt.Fprintln(bw, seq[:n]); err != nil {
				return err
			}
			seq = seq[n:]
		}
	}
	return bw.Flush()
}

// WriteFile writes entries to path, creating parent directories.
func WriteFile(path string, entries []Entry) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return Write(f, entries, LineWidth)
}
