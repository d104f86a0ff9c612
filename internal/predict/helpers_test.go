package predict

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
)

// makeArchive builds a gzipped tarball laid out like a JPred results
// download: every member under "<jobID>/".
func makeArchive(t *testing.T, jobID string, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if err := tw.WriteHeader(&tar.Header{Name: jobID + "/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatal(err)
	}
	for name, body := range members {
		hdr := &tar.Header{
			Name:     jobID + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(body)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const sampleJnet = `align1:-,-,H,H,H,-,E,E,-,
jnetpred:-,-,H,H,H,-,E,E,-,
JNETCONF:7,5,3,6,8,8,4,6,5,
`
