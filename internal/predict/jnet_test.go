package predict

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseJnet(t *testing.T) {
	got, err := ParseJnet(strings.NewReader(sampleJnet))
	if err != nil {
		t.Fatalf("ParseJnet failed: %v", err)
	}
	if got != "--HHH-EE-" {
		t.Errorf("got %q, want %q", got, "--HHH-EE-")
	}
}

func TestParseJnet_Missing(t *testing.T) {
	_, err := ParseJnet(strings.NewReader("JNETCONF:1,2,3\n"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadArchive(t *testing.T) {
	data := makeArchive(t, "jp_ABC123", map[string]string{
		"jp_ABC123.jnet": sampleJnet,
		"P0AFW0.name":    "",
		"jp_ABC123.name": "",
		"jp_ABC123.html": "<html></html>",
	})

	contents, err := ReadArchive(bytes.NewReader(data), "jp_ABC123")
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if contents.Labels != "--HHH-EE-" {
		t.Errorf("labels = %q", contents.Labels)
	}
	if contents.Accession != "P0AFW0" {
		t.Errorf("accession = %q", contents.Accession)
	}
}

func TestReadArchive_NoJnet(t *testing.T) {
	data := makeArchive(t, "jp_X", map[string]string{"other.txt": "x"})
	if _, err := ReadArchive(bytes.NewReader(data), "jp_X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadArchive_NotGzip(t *testing.T) {
	if _, err := ReadArchive(strings.NewReader("plain text"), "jp_X"); err == nil {
		t.Error("expected error for non-gzip input")
	}
}
