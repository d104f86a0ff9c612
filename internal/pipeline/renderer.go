package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/foldswitch/internal/model"
)

// CSVHeader is the column layout of the summary file
var CSVHeader = []string{
	"", "acc", "name", "category", "seq", "raw_h", "jpred", "seq_aln", "jpred_aln",
	"s_diff", "s_same", "n_diff", "n_same", "n_skipped", "mismatches", "candidate",
}

// Renderer writes reports in the supported formats
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderCSV writes the summary table with an index column
func (r *Renderer) RenderCSV(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteCSV(w, report)
	})
}

// WriteCSV writes the summary table to w
func (r *Renderer) WriteCSV(w io.Writer, report *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i, row := range report.Rows {
		rec := []string{
			strconv.Itoa(i),
			row.Accession,
			row.Name,
			row.Category,
			row.Sequence,
			row.Header,
			row.Labels,
			row.Aligned,
			row.Projected,
			formatScore(row.CrossScore),
			formatScore(row.SameScore),
			strconv.Itoa(row.CrossPairs),
			strconv.Itoa(row.SamePairs),
			strconv.Itoa(row.SkippedPairs),
			strconv.Itoa(row.Mismatches),
			strconv.FormatBool(row.Candidate),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	})
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Secondary structure discrepancy: %s\n\n", strings.Join(report.Categories, " vs "))
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Created: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Predictor: %s\n", report.Predictor)
	fmt.Fprintf(&b, "- Aligner: %s\n", report.Aligner)
	fmt.Fprintf(&b, "- Threshold: %.2f\n", report.Threshold)
	if report.Trim != 0 {
		fmt.Fprintf(&b, "- Trim: %d\n", report.Trim)
	}
	fmt.Fprintf(&b, "- Zero-structure pairs: %s\n\n", report.ZeroPolicy)

	b.WriteString("## Scores\n\n")
	b.WriteString("| Accession | Name | Category | Cross | Same | Pairs | Mismatches | Candidate |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|:---:|\n")
	for _, row := range report.Rows {
		mark := ""
		if row.Candidate {
			mark = "✓"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d/%d | %d | %s |\n",
			row.Accession, row.Name, row.Category,
			formatScore(row.CrossScore), formatScore(row.SameScore),
			row.CrossPairs, row.SamePairs, row.Mismatches, mark)
	}

	if candidates := report.Candidates(); len(candidates) > 0 {
		b.WriteString("\n## Candidates\n\n")
		for _, row := range candidates {
			fmt.Fprintf(&b, "### %s (%s)\n\n", row.Accession, row.Category)
			fmt.Fprintf(&b, "```\n%s\n%s\n```\n\n", row.Aligned, row.Projected)
		}
	}

	if len(report.Excluded) > 0 {
		b.WriteString("\n## Excluded\n\n")
		b.WriteString("| Accession | Category | Stage | Reason |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, ex := range report.Excluded {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", ex.Accession, ex.Category, ex.Stage, strings.ReplaceAll(ex.Reason, "|", "\\|"))
		}
	}

	return b.String()
}

// RenderSummary prints a short table to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", strings.Join(report.Categories, " vs "))
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	for _, row := range report.Rows {
		mark := " "
		if row.Candidate {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %-12s %-16s %s\n", mark, row.Accession, row.Category, formatScore(row.CrossScore))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Compared:    %d\n", len(report.Rows))
	fmt.Fprintf(w, "  Candidates:  %d (threshold %.2f)\n", len(report.Candidates()), report.Threshold)
	fmt.Fprintf(w, "  Excluded:    %d\n", len(report.Excluded))
	fmt.Fprintf(w, "\n")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return write(f)
}
