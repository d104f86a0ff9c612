package worker

import (
	"context"
	"time"

	"github.com/ppiankov/foldswitch/internal/model"
)

// Predictor produces secondary-structure labels for one record
type Predictor interface {
	PredictRecord(ctx context.Context, rec model.Record) (string, error)
}

// PredictJob asks a predictor for one record's labels
type PredictJob struct {
	Record    model.Record
	Predictor Predictor
}

// Execute runs the prediction
func (j *PredictJob) Execute(ctx context.Context) Result {
	start := time.Now()
	labels, err := j.Predictor.PredictRecord(ctx, j.Record)
	return &PredictResult{
		Record:   j.Record,
		Labels:   labels,
		Duration: time.Since(start),
		Error:    err,
	}
}

// PredictResult is the outcome of a PredictJob
type PredictResult struct {
	Record   model.Record
	Labels   string
	Duration time.Duration
	Error    error
}

// GetError returns the prediction error, if any
func (r *PredictResult) GetError() error {
	return r.Error
}

// BatchProcessor runs predictions for many records concurrently
type BatchProcessor struct {
	predictor   Predictor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(predictor Predictor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		predictor:   predictor,
		concurrency: concurrency,
	}
}

// ProcessRecords predicts labels for every record. Results come back in
// input order. When ctx is cancelled part-way, records that never ran get
// a result carrying ctx.Err().
func (b *BatchProcessor) ProcessRecords(ctx context.Context, records []model.Record) []*PredictResult {
	if len(records) == 0 {
		return []*PredictResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, rec := range records {
		pool.Submit(&PredictJob{
			Record:    rec,
			Predictor: b.predictor,
		})
	}

	results := pool.Wait()

	done := make(map[string]*PredictResult, len(results))
	for _, result := range results {
		pr := result.(*PredictResult)
		done[pr.Record.Accession] = pr
	}

	out := make([]*PredictResult, len(records))
	for i, rec := range records {
		if pr, ok := done[rec.Accession]; ok {
			out[i] = pr
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &PredictResult{Record: rec, Error: err}
	}

	return out
}
