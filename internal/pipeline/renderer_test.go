package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/foldswitch/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		RunID:      "run-1",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []string{"famA", "famB"},
		Predictor:  "jpred",
		Aligner:    "clustalo",
		Threshold:  0.1,
		ZeroPolicy: "skip",
		Rows: []model.Row{
			{Accession: "P1", Name: "ONE_A", Category: "famA", Header: "sp|P1|ONE_A Protein, one", Sequence: "MKTA",
				Labels: "HHHH", Aligned: "MKTA", Projected: "HHHH", CrossScore: 0.5, CrossPairs: 1, Candidate: true},
			{Accession: "Q1", Name: "ONE_B", Category: "famB", Sequence: "MKTA",
				Labels: "HHEE", Aligned: "MKTA", Projected: "HHEE", CrossScore: 0.05, CrossPairs: 1},
		},
		Excluded: []model.Exclude{{Accession: "P3", Category: "famA", Stage: StagePredict, Reason: "not found"}},
	}
}

func TestRenderer_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer().WriteCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-reading CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0][:3], ",") != ",acc,name" {
		t.Errorf("header = %v", rows[0])
	}
	first := rows[1]
	if first[0] != "0" || first[1] != "P1" || first[5] != "sp|P1|ONE_A Protein, one" {
		t.Errorf("first row = %v", first)
	}
	if first[9] != "0.5000" || first[len(first)-1] != "true" {
		t.Errorf("first row scores = %v", first)
	}
}

func TestRenderer_JSONAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer()
	report := sampleReport()

	jsonPath := filepath.Join(dir, "out", "report.json")
	if err := r.RenderJSON(report, jsonPath); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var back model.Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if back.RunID != "run-1" || len(back.Rows) != 2 {
		t.Errorf("round trip lost data: %+v", back)
	}

	md := r.Markdown(report)
	for _, want := range []string{"famA vs famB", "## Candidates", "### P1 (famA)", "## Excluded", "| P3 | famA | predict |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer().RenderSummary(&buf, sampleReport())
	out := buf.String()
	if !strings.Contains(out, "Candidates:  1") || !strings.Contains(out, "Excluded:    1") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestPipeline_RenderReport(t *testing.T) {
	dir := t.TempDir()
	cfg := newTestConfig()
	cfg.Output.CSV = filepath.Join(dir, "summary.txt")
	cfg.Output.JSON = filepath.Join(dir, "report.json")
	cfg.Output.Markdown = filepath.Join(dir, "report.md")

	var log bytes.Buffer
	p := NewPipeline(cfg, &fakeProvider{}, identityAligner{}, &log)
	if err := p.RenderReport(sampleReport()); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	for _, path := range []string{cfg.Output.CSV, cfg.Output.JSON, cfg.Output.Markdown} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}
	if !strings.Contains(log.String(), "✓ Wrote summary") {
		t.Errorf("expected progress line, got:\n%s", log.String())
	}
}
