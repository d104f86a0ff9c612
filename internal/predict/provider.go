// Package predict obtains per-residue secondary-structure predictions from
// an external predictor.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/foldswitch/internal/model"
)

var (
	// ErrNotFound means the provider has no prediction for the accession.
	ErrNotFound = errors.New("prediction not found")
	// ErrJobFailed means the remote service rejected or lost the job.
	ErrJobFailed = errors.New("prediction job failed")
	// ErrEmptySequence means nothing was left to submit after trimming.
	ErrEmptySequence = errors.New("empty sequence")
)

// Provider is a secondary-structure predictor
type Provider interface {
	// Name identifies the provider in cache keys and reports
	Name() string

	// Predict returns labels for req.Sequence, one per residue
	Predict(ctx context.Context, req Request) (*Prediction, error)
}

// Request is one sequence to predict
type Request struct {
	Accession string
	Header    string // Original FASTA header, used as the job name
	Sequence  string // Exactly what gets submitted
}

// Prediction is a predictor's answer
type Prediction struct {
	Accession string
	Labels    string
	JobID     string // Remote job id, when there was one
	Source    string // remote, archive, cache
}

// Trim applies a Python-style slice to seq: n > 0 drops the first n
// residues, n < 0 keeps the last -n, 0 keeps everything. Out-of-range
// values clamp instead of failing.
func Trim(seq string, n int) string {
	switch {
	case n > 0:
		if n >= len(seq) {
			return ""
		}
		return seq[n:]
	case n < 0:
		if -n >= len(seq) {
			return seq
		}
		return seq[len(seq)+n:]
	default:
		return seq
	}
}

// RecordPredictor adapts a Provider to the worker pool, applying the
// configured trim before submission.
type RecordPredictor struct {
	Provider Provider
	Trim     int
}

// PredictRecord predicts labels for rec's (trimmed) sequence
func (p *RecordPredictor) PredictRecord(ctx context.Context, rec model.Record) (string, error) {
	seq := Trim(rec.Sequence, p.Trim)
	if seq == "" {
		return "", fmt.Errorf("%s: %w after trim %d", rec.Accession, ErrEmptySequence, p.Trim)
	}

	pred, err := p.Provider.Predict(ctx, Request{
		Accession: rec.Accession,
		Header:    rec.Header,
		Sequence:  seq,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Provider.Name(), err)
	}
	return pred.Labels, nil
}
