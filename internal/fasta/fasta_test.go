package fasta

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const uniprot = `>sp|P0AFW0|RFAH_ECOLI Transcription antiterminator RfaH OS=Escherichia coli
MQSWYLLYCKRGQLQRAQEHLERQAVNCLAPMITLEKIVRGKRTAVSEPLFPNYLFVEFD
PEVIHTTTINATRGVSHFVRFGASPAIVPSAVIHQLSVYKPKDIVDPATPYPGDKVIITE
>tr|Q9XYZ1|Q9XYZ1_9BACT Uncharacterized protein
mktayiakqr
qisfvk
`

func TestRead(t *testing.T) {
	records, err := Read(strings.NewReader(uniprot), "RfaH")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.Accession != "P0AFW0" || r.Name != "RFAH_ECOLI" || r.Category != "RfaH" {
		t.Errorf("unexpected record: %+v", r)
	}
	if len(r.Sequence) != 120 {
		t.Errorf("sequence length %d, want 120", len(r.Sequence))
	}
	if !strings.HasPrefix(r.Header, "sp|P0AFW0|") {
		t.Errorf("header not kept: %q", r.Header)
	}

	if records[1].Sequence != "MKTAYIAKQRQISFVK" {
		t.Errorf("sequence not joined and upper-cased: %q", records[1].Sequence)
	}
}

func TestRead_PlainHeaders(t *testing.T) {
	records, err := Read(strings.NewReader(">seq1 some description\nACDE\n>seq2\nFGHI\n"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Accession != "seq1" || records[1].Accession != "seq2" {
		t.Errorf("accessions: %s, %s", records[0].Accession, records[1].Accession)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := map[string]string{
		"duplicate":          ">a|P1|X\nAC\n>b|P1|Y\nDE\n",
		"data before header": "ACDE\n>a|P1|X\nAC\n",
		"empty header":       ">\nACDE\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(input), "c"); !errors.Is(err, ErrBadInput) {
				t.Errorf("expected ErrBadInput, got %v", err)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	acc, name := ParseHeader("sp|P69441|KAD_ECOLI Adenylate kinase")
	if acc != "P69441" || name != "KAD_ECOLI" {
		t.Errorf("got %q %q", acc, name)
	}
	acc, name = ParseHeader("ref|WP_000001|")
	if acc != "WP_000001" || name != "" {
		t.Errorf("got %q %q", acc, name)
	}
}

func TestCategoryFromPath(t *testing.T) {
	cat, err := CategoryFromPath("/data/sets/GA.txt")
	if err != nil || cat != "GA" {
		t.Errorf("got %q, %v", cat, err)
	}
	if _, err := CategoryFromPath("/data/sets/GA"); !errors.Is(err, ErrBadInput) {
		t.Errorf("expected ErrBadInput for missing extension, got %v", err)
	}
}

func TestLoadPair(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "GA.txt")
	b := filepath.Join(dir, "GB.fasta")
	writeFile(t, a, ">sp|A1|X\nMKT\n>sp|A2|Y\nMKV\n")
	writeFile(t, b, ">sp|B1|Z\nMRT\n")

	records, err := LoadPair(a, b)
	if err != nil {
		t.Fatalf("LoadPair failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Category != "GA" || records[2].Category != "GB" {
		t.Errorf("categories: %s, %s", records[0].Category, records[2].Category)
	}

	same := filepath.Join(t.TempDir(), "GA.fasta")
	writeFile(t, same, ">sp|C1|Z\nMRT\n")
	if _, err := LoadPair(a, same); !errors.Is(err, ErrBadInput) {
		t.Errorf("expected ErrBadInput for equal categories, got %v", err)
	}

	clash := filepath.Join(dir, "GC.fasta")
	writeFile(t, clash, ">sp|A1|Z\nMRT\n")
	if _, err := LoadPair(a, clash); !errors.Is(err, ErrBadInput) {
		t.Errorf("expected ErrBadInput for shared accession, got %v", err)
	}
}

func TestWrite_Wraps(t *testing.T) {
	var buf bytes.Buffer
	seq := strings.Repeat("A", 130)
	if err := Write(&buf, []Entry{{Header: "sp|P1|X", Sequence: seq}}, LineWidth); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 lines, got %d", len(lines))
	}
	if lines[0] != ">sp|P1|X" || len(lines[1]) != 60 || len(lines[3]) != 10 {
		t.Errorf("unexpected layout: %q", lines)
	}

	// Output parses back to the same record.
	records, err := Read(&buf, "c")
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Sequence != seq {
		t.Error("round trip changed the sequence")
	}
}

func TestWrite_NoWrapEachEntry(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{Header: "a", Sequence: "MK"}, {Header: "b", Sequence: "MKTAYI"}}
	if err := Write(&buf, entries, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), ">a\nMK\n>b\nMKTAYI\n"; got != want {
		t.Errorf("Write(width 0) = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
