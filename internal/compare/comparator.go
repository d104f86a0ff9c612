// Package compare aggregates pairwise discrepancy scores across a
// collection of projected records.
package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/foldswitch/internal/align"
	"github.com/ppiankov/foldswitch/internal/model"
	"github.com/ppiankov/foldswitch/internal/score"
)

// ErrDuplicateAccession is returned when two records share an accession.
var ErrDuplicateAccession = errors.New("duplicate accession")

// ZeroPolicy decides what happens to a pair with no structured residues.
type ZeroPolicy string

const (
	// ZeroSkip drops the pair from both averages and counts it as skipped.
	ZeroSkip ZeroPolicy = "skip"
	// ZeroFail aborts the comparison with a *score.PairError.
	ZeroFail ZeroPolicy = "fail"
)

// ParseZeroPolicy accepts "skip", "fail" or "" (skip).
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch ZeroPolicy(s) {
	case "", ZeroSkip:
		return ZeroSkip, nil
	case ZeroFail:
		return ZeroFail, nil
	default:
		return "", fmt.Errorf("unknown zero policy %q (supported: skip, fail)", s)
	}
}

// Options tune a comparison.
type Options struct {
	ZeroPolicy ZeroPolicy
	Workers    int // Outer-loop parallelism; <= 0 means 1
}

// Stats are the per-accession aggregates.
type Stats struct {
	Cross        float64 // Mean discrepancy vs. other categories, 0 with no partners
	Same         float64 // Mean discrepancy within the category, 0 with no partners
	CrossPairs   int
	SamePairs    int
	SkippedPairs int
}

// Result maps accession to its aggregates.
type Result struct {
	Stats map[string]Stats
}

// Cross returns accession -> cross-category average.
func (r *Result) Cross() map[string]float64 {
	out := make(map[string]float64, len(r.Stats))
	for acc, s := range r.Stats {
		out[acc] = s.Cross
	}
	return out
}

// Accessions returns the compared accessions in sorted order.
func (r *Result) Accessions() []string {
	out := make([]string, 0, len(r.Stats))
	for acc := range r.Stats {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}

// Compare scores every record against every other record using their
// projected labels. Records are ordered by accession first, so the result
// does not depend on input order. The input slice is not modified.
func Compare(ctx context.Context, records []model.Record, opts Options) (*Result, error) {
	sorted, err := byAccession(records)
	if err != nil {
		return nil, err
	}
	if opts.ZeroPolicy == "" {
		opts.ZeroPolicy = ZeroSkip
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	slots := make([]Stats, len(sorted))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range sorted {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := aggregate(sorted, i, opts.ZeroPolicy)
			if err != nil {
				return err
			}
			slots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Stats: make(map[string]Stats, len(sorted))}
	for i, r := range sorted {
		result.Stats[r.Accession] = slots[i]
	}
	return result, nil
}

// aggregate computes the averages for sorted[i]. It only reads shared data.
func aggregate(sorted []model.Record, i int, policy ZeroPolicy) (Stats, error) {
	var (
		s                 Stats
		crossSum, sameSum float64
		self              = sorted[i]
	)
	for j, other := range sorted {
		if i == j {
			continue
		}
		d, err := score.Discrepancy(self.Projected, other.Projected)
		if err != nil {
			if errors.Is(err, score.ErrNoStructuredResidues) && policy == ZeroSkip {
				s.SkippedPairs++
				continue
			}
			return Stats{}, &score.PairError{A: self.Accession, B: other.Accession, Err: err}
		}
		if self.Category != other.Category {
			crossSum += d
			s.CrossPairs++
		} else {
			sameSum += d
			s.SamePairs++
		}
	}
	if s.CrossPairs > 0 {
		s.Cross = crossSum / float64(s.CrossPairs)
	}
	if s.SamePairs > 0 {
		s.Same = sameSum / float64(s.SamePairs)
	}
	return s, nil
}

func byAccession(records []model.Record) ([]model.Record, error) {
	seen := make(map[string]bool, len(records))
	width := -1
	for _, r := range records {
		if seen[r.Accession] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccession, r.Accession)
		}
		seen[r.Accession] = true
		if width >= 0 && len(r.Projected) != width {
			return nil, fmt.Errorf("%w: %s has %d projected columns, expected %d",
				align.ErrLengthMismatch, r.Accession, len(r.Projected), width)
		}
		width = len(r.Projected)
	}

	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Accession < sorted[b].Accession
	})
	return sorted, nil
}
