package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/foldswitch/internal/align"
	"github.com/ppiankov/foldswitch/internal/compare"
	"github.com/ppiankov/foldswitch/internal/fasta"
	"github.com/ppiankov/foldswitch/internal/model"
	"github.com/ppiankov/foldswitch/internal/msa"
	"github.com/ppiankov/foldswitch/internal/predict"
	"github.com/ppiankov/foldswitch/internal/score"
	"github.com/ppiankov/foldswitch/internal/worker"
)

// Exclusion stages
const (
	StagePredict = "predict"
	StageAlign   = "align"
	StageProject = "project"
)

// Pipeline orchestrates a complete comparison run
type Pipeline struct {
	provider predict.Provider
	aligner  msa.Aligner
	renderer *Renderer
	config   *model.Config
	log      io.Writer
}

// NewPipeline creates a pipeline. Progress lines go to log when
// cfg.Output.Verbose is set; warnings always do.
func NewPipeline(cfg *model.Config, provider predict.Provider, aligner msa.Aligner, log io.Writer) *Pipeline {
	if log == nil {
		log = io.Discard
	}
	return &Pipeline{
		provider: provider,
		aligner:  aligner,
		renderer: NewRenderer(),
		config:   cfg,
		log:      log,
	}
}

// Run loads both FASTA files, predicts, aligns, projects and compares them
func (p *Pipeline) Run(ctx context.Context, pathA, pathB string) (*model.Report, error) {
	policy, err := compare.ParseZeroPolicy(p.config.Scoring.ZeroPolicy)
	if err != nil {
		return nil, err
	}

	// 1. Load
	records, err := fasta.LoadPair(pathA, pathB)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	p.progress("✓ Loaded %d sequences from %s and %s\n", len(records), pathA, pathB)

	report := &model.Report{
		RunID:      uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Inputs:     []string{pathA, pathB},
		Categories: model.Categories(records),
		Predictor:  p.provider.Name(),
		Aligner:    p.aligner.Name(),
		Threshold:  p.config.Scoring.Threshold,
		Trim:       p.config.Scoring.Trim,
		ZeroPolicy: string(policy),
	}

	// 2. Predict
	labelled, err := p.predict(ctx, records, report)
	if err != nil {
		return nil, err
	}

	// 3. Align
	aligned, err := p.align(ctx, labelled, report)
	if err != nil {
		return nil, err
	}

	// 4. Project
	projected := p.project(aligned, report)

	// 5. Compare
	p.progress("⚙️  Comparing %d sequences...\n", len(projected))
	result, err := compare.Compare(ctx, projected, compare.Options{
		ZeroPolicy: policy,
		Workers:    p.config.Concurrency.CompareWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	// 6. Rows
	report.Rows = BuildRows(projected, result, p.config.Scoring.Threshold, p.direction())
	p.progress("✓ %d candidates at threshold %.2f\n", len(report.Candidates()), report.Threshold)

	return report, nil
}

func (p *Pipeline) predict(ctx context.Context, records []model.Record, report *model.Report) ([]model.Record, error) {
	workers := p.config.Concurrency.PredictWorkers
	p.progress("⚙️  Predicting secondary structure with %s (%d workers)...\n", p.provider.Name(), workers)

	batch := worker.NewBatchProcessor(&predict.RecordPredictor{
		Provider: p.provider,
		Trim:     p.config.Scoring.Trim,
	}, workers)

	var out []model.Record
	for _, res := range batch.ProcessRecords(ctx, records) {
		if res.Error != nil {
			p.exclude(report, res.Record, StagePredict, res.Error)
			continue
		}
		p.progress("✓ %s (%s)\n", res.Record.Accession, res.Duration.Round(time.Millisecond))
		out = append(out, res.Record.WithLabels(res.Labels))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return out, nil
}

func (p *Pipeline) align(ctx context.Context, records []model.Record, report *model.Report) ([]model.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	p.progress("⚙️  Aligning %d sequences with %s...\n", len(records), p.aligner.Name())

	rows, err := p.aligner.Align(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}

	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		row := rows[rec.Accession]
		if err := msa.CheckRow(rec, row); err != nil {
			p.exclude(report, rec, StageAlign, err)
			continue
		}
		out = append(out, rec.WithAligned(row))
	}
	return out, nil
}

func (p *Pipeline) project(records []model.Record, report *model.Report) []model.Record {
	dir := p.direction()
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		proj, err := align.ProjectChecked(rec.Labels, rec.Aligned, dir)
		if err != nil {
			p.exclude(report, rec, StageProject, err)
			continue
		}
		out = append(out, rec.WithProjected(proj))
	}
	return out
}

// direction anchors trimmed predictions at the C-terminus
func (p *Pipeline) direction() align.Direction {
	if p.config.Scoring.Trim != 0 {
		return align.Reverse
	}
	return align.Forward
}

func (p *Pipeline) exclude(report *model.Report, rec model.Record, stage string, err error) {
	report.Excluded = append(report.Excluded, model.Exclude{
		Accession: rec.Accession,
		Category:  rec.Category,
		Stage:     stage,
		Reason:    err.Error(),
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	_, _ = fmt.Fprintf(p.log, "✗ %s: %s: %v\n", rec.Accession, stage, err)
}

func (p *Pipeline) progress(format string, a ...any) {
	if p.config.Output.Verbose {
		_, _ = fmt.Fprintf(p.log, format, a...)
	}
}

// BuildRows turns compared records into report rows, keeping input order.
// Mismatches are counted against the consensus of the other categories.
func BuildRows(records []model.Record, result *compare.Result, threshold float64, dir align.Direction) []model.Row {
	consensus := make(map[string]string)
	for _, cat := range model.Categories(records) {
		var others []string
		for _, r := range records {
			if r.Category != cat {
				others = append(others, r.Projected)
			}
		}
		consensus[cat] = score.Consensus(others)
	}

	rows := make([]model.Row, 0, len(records))
	for _, r := range records {
		st := result.Stats[r.Accession]
		rows = append(rows, model.Row{
			Accession:    r.Accession,
			Name:         r.Name,
			Category:     r.Category,
			Header:       r.Header,
			Sequence:     r.Sequence,
			Labels:       r.Labels,
			Aligned:      r.Aligned,
			Projected:    r.Projected,
			CrossScore:   st.Cross,
			SameScore:    st.Same,
			CrossPairs:   st.CrossPairs,
			SamePairs:    st.SamePairs,
			SkippedPairs: st.SkippedPairs,
			Mismatches:   score.CountMismatches(r.Projected, consensus[r.Category], dir),
			Candidate:    st.CrossPairs > 0 && st.Cross >= threshold,
		})
	}
	return rows
}

// RenderReport writes every configured output and prints the summary
func (p *Pipeline) RenderReport(report *model.Report) error {
	out := p.config.Output

	if out.CSV != "" {
		if err := p.renderer.RenderCSV(report, out.CSV); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		p.progress("✓ Wrote summary: %s\n", out.CSV)
	}

	if out.JSON != "" {
		if err := p.renderer.RenderJSON(report, out.JSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.progress("✓ Wrote JSON: %s\n", out.JSON)
	}

	if out.Markdown != "" {
		if err := p.renderer.RenderMarkdown(report, out.Markdown); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.progress("✓ Wrote Markdown: %s\n", out.Markdown)
	}

	p.renderer.RenderSummary(p.log, report)
	return nil
}
