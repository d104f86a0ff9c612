package predict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// accessionSuffix names the sidecar file that records which accession a
// downloaded job belongs to.
const accessionSuffix = ".accession"

// ArchiveProvider serves predictions from JPred result tarballs that were
// downloaded earlier, without contacting the service.
type ArchiveProvider struct {
	dir string

	once  sync.Once
	index map[string]string // accession -> tarball path
	err   error
}

// NewArchiveProvider reads archives from dir
func NewArchiveProvider(dir string) (*ArchiveProvider, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	return &ArchiveProvider{dir: dir}, nil
}

// Name returns the provider name
func (p *ArchiveProvider) Name() string {
	return "archive"
}

// Predict looks up req.Accession among the archives
func (p *ArchiveProvider) Predict(ctx context.Context, req Request) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.once.Do(func() { p.index, p.err = p.scan() })
	if p.err != nil {
		return nil, p.err
	}

	tarball, ok := p.index[req.Accession]
	if !ok {
		return nil, fmt.Errorf("%w: no archive for %s in %s", ErrNotFound, req.Accession, p.dir)
	}

	contents, err := readArchiveFile(tarball)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Accession: req.Accession,
		Labels:    contents.Labels,
		JobID:     contents.JobID,
		Source:    "archive",
	}, nil
}

// Accessions lists the accessions that have an archive, in sorted order
func (p *ArchiveProvider) Accessions() ([]string, error) {
	p.once.Do(func() { p.index, p.err = p.scan() })
	if p.err != nil {
		return nil, p.err
	}
	out := make([]string, 0, len(p.index))
	for acc := range p.index {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out, nil
}

// scan maps accessions to tarballs. The accession comes from the sidecar
// file when present, otherwise from an "<accession>.name" archive member.
func (p *ArchiveProvider) scan() (map[string]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	index := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".tar.gz") {
			continue
		}
		jobID := strings.TrimSuffix(name, ".tar.gz")
		tarball := filepath.Join(p.dir, name)

		acc := ""
		if b, err := os.ReadFile(filepath.Join(p.dir, jobID+accessionSuffix)); err == nil {
			acc = strings.TrimSpace(string(b))
		}
		if acc == "" {
			contents, err := readArchiveFile(tarball)
			if err != nil {
				continue
			}
			acc = contents.Accession
		}
		if acc != "" {
			index[acc] = tarball
		}
	}
	return index, nil
}

func readArchiveFile(tarball string) (*ArchiveContents, error) {
	f, err := os.Open(tarball)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	jobID := strings.TrimSuffix(filepath.Base(tarball), ".tar.gz")
	contents, err := ReadArchive(f, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tarball, err)
	}
	return contents, nil
}
