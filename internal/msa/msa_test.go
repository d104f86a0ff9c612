package msa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ppiankov/foldswitch/internal/align"
	"github.com/ppiankov/foldswitch/internal/model"
)

func recs(accs ...string) []model.Record {
	out := make([]model.Record, len(accs))
	for i, a := range accs {
		out[i] = model.Record{Accession: a, Sequence: "MKT"}
	}
	return out
}

func TestFileAligner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aln.fasta")
	content := ">sp|P1|A\nMK-T\n>sp|P2|B\nM-KT\n>sp|P3|C\n--MK\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := NewFileAligner(path).Align(context.Background(), recs("P1", "P2"))
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(rows) != 2 || rows["P1"] != "MK-T" || rows["P2"] != "M-KT" {
		t.Errorf("unexpected rows: %v", rows)
	}

	if _, err := NewFileAligner(path).Align(context.Background(), recs("P1", "P9")); !errors.Is(err, ErrAlignment) {
		t.Errorf("expected ErrAlignment for missing record, got %v", err)
	}
}

func TestRows_RaggedAlignment(t *testing.T) {
	aligned := []model.Record{
		{Accession: "P1", Sequence: "MK-T"},
		{Accession: "P2", Sequence: "MKT"},
	}
	if _, err := Rows(aligned, recs("P1", "P2")); !errors.Is(err, ErrAlignment) {
		t.Errorf("expected ErrAlignment, got %v", err)
	}
}

func TestCheckRow(t *testing.T) {
	aligned := []model.Record{
		{Accession: "P1", Sequence: "WWWWWW-"},
		{Accession: "P2", Sequence: "MKT----"},
	}
	rows, err := Rows(aligned, recs("P1", "P2"))
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}

	tests := []struct {
		acc     string
		row     string
		wantErr bool
	}{
		{"P1", rows["P1"], true},
		{"P2", rows["P2"], false},
		{"P3", "m-k-t", false},
		{"P4", "WKT", true},
		{"P5", "MK", true},
		{"P6", "MKTA", true},
	}
	for _, tt := range tests {
		err := CheckRow(model.Record{Accession: tt.acc, Sequence: "MKT"}, tt.row)
		if tt.wantErr && !errors.Is(err, align.ErrLengthMismatch) {
			t.Errorf("%s %q: expected ErrLengthMismatch, got %v", tt.acc, tt.row, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s %q: unexpected error %v", tt.acc, tt.row, err)
		}
	}
}

func TestClustalOmega_Args(t *testing.T) {
	c := NewClustalOmega("", "", 4)
	got := c.Args("in.fa", "out.fa")
	want := []string{"--force", "--outfmt=fa", "-i", "in.fa", "-o", "out.fa", "--threads=4"}
	if len(got) != len(want) {
		t.Fatalf("Args = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
	if c.binary != "clustalo" {
		t.Errorf("default binary = %q", c.binary)
	}
}

// fakeClustalo writes a shell script that copies its input to its output,
// which is a valid (trivial) alignment when all sequences share a length.
func fakeClustalo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "clustalo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClustalOmega_Align(t *testing.T) {
	bin := fakeClustalo(t, `cp "$4" "$6"`)
	c := NewClustalOmega(bin, t.TempDir(), 1)

	rows, err := c.Align(context.Background(), recs("P1", "P2"))
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if rows["P1"] != "MKT" || rows["P2"] != "MKT" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestClustalOmega_Failure(t *testing.T) {
	bin := fakeClustalo(t, `echo "boom" >&2; exit 3`)
	c := NewClustalOmega(bin, t.TempDir(), 1)

	if _, err := c.Align(context.Background(), recs("P1")); !errors.Is(err, ErrAlignment) {
		t.Errorf("expected ErrAlignment, got %v", err)
	}
}

func TestClustalOmega_Empty(t *testing.T) {
	rows, err := NewClustalOmega("does-not-exist", "", 1).Align(context.Background(), nil)
	if err != nil || len(rows) != 0 {
		t.Errorf("empty input: %v, %v", rows, err)
	}
}

func TestNewAligner(t *testing.T) {
	a, err := NewAligner(model.AlignerConfig{Provider: "clustalo"}, "")
	if err != nil || a.Name() != "clustalo" {
		t.Errorf("clustalo: %v, %v", a, err)
	}
	if _, err := NewAligner(model.AlignerConfig{Provider: "file"}, ""); err == nil {
		t.Error("expected error for file aligner without path")
	}
	a, err = NewAligner(model.AlignerConfig{Provider: "file", AlignmentFile: "x.fa"}, "")
	if err != nil || a.Name() != "file" {
		t.Errorf("file: %v, %v", a, err)
	}
	if _, err := NewAligner(model.AlignerConfig{Provider: "muscle"}, ""); err == nil {
		t.Error("expected error for unknown aligner")
	}
}
