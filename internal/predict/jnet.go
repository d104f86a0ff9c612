package predict

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

var nameMember = regexp.MustCompile(`^(\w+)\.name$`)

// ParseJnet extracts the consensus prediction from a JPred .jnet file: the
// "jnetpred:" line with its comma separators removed.
func ParseJnet(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "jnetpred:"); ok {
			return strings.ReplaceAll(rest, ",", ""), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read jnet: %w", err)
	}
	return "", fmt.Errorf("%w: no jnetpred line", ErrNotFound)
}

// ArchiveContents is what a JPred results tarball tells us
type ArchiveContents struct {
	JobID     string
	Accession string // From an "<accession>.name" member, if any
	Labels    string
}

// ReadArchive reads a gzipped JPred results tarball and pulls out
// "<jobID>.jnet" and the accession from any "<accession>.name" member.
func ReadArchive(r io.Reader, jobID string) (*ArchiveContents, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	out := &ArchiveContents{JobID: jobID}
	found := false

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		base := path.Base(hdr.Name)
		if m := nameMember.FindStringSubmatch(base); m != nil && m[1] != jobID {
			out.Accession = m[1]
		}
		if base == jobID+".jnet" {
			labels, err := ParseJnet(tr)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", hdr.Name, err)
			}
			out.Labels = labels
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s.jnet missing from archive", ErrNotFound, jobID)
	}
	return out, nil
}
