package msa

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/foldswitch/internal/fasta"
	"github.com/ppiankov/foldswitch/internal/model"
)

// ClustalOmega runs the clustalo binary
type ClustalOmega struct {
	binary  string
	workDir string
	threads int
}

// NewClustalOmega creates a runner; temp files go under workDir
func NewClustalOmega(binary, workDir string, threads int) *ClustalOmega {
	if binary == "" {
		binary = "clustalo"
	}
	return &ClustalOmega{binary: binary, workDir: workDir, threads: threads}
}

// Name returns the aligner name
func (c *ClustalOmega) Name() string {
	return "clustalo"
}

// Args returns the command line for one run
func (c *ClustalOmega) Args(in, out string) []string {
	args := []string{"--force", "--outfmt=fa", "-i", in, "-o", out}
	if c.threads > 1 {
		args = append(args, "--threads="+strconv.Itoa(c.threads))
	}
	return args
}

// Align writes the records to a temp FASTA, runs clustalo and reads the
// aligned output back
func (c *ClustalOmega) Align(ctx context.Context, records []model.Record) (map[string]string, error) {
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	if c.workDir != "" {
		if err := os.MkdirAll(c.workDir, 0755); err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(c.workDir, "msa-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "unaln.temp.fasta")
	out := filepath.Join(dir, "aln.temp.fasta")

	// Headers are reduced to accessions so the output keys cleanly.
	entries := make([]fasta.Entry, len(records))
	for i, r := range records {
		entries[i] = fasta.Entry{Header: "x|" + r.Accession + "|", Sequence: r.Sequence}
	}
	if err := fasta.WriteFile(in, entries); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.binary, c.Args(in, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrAlignment, c.binary, err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrAlignment, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := fasta.Read(f, "")
	if err != nil {
		return nil, fmt.Errorf("%w: parse output: %v", ErrAlignment, err)
	}
	return Rows(rows, records)
}
