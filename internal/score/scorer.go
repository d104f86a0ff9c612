// Package score measures how far two projected secondary-structure strings
// disagree.
package score

import (
	"errors"
	"fmt"

	"github.com/ppiankov/foldswitch/internal/align"
)

// ErrNoStructuredResidues is returned when one of the two strings has no
// helix or strand positions, leaving the ratio undefined.
var ErrNoStructuredResidues = errors.New("no structured residues")

// Structured reports whether label is helix or strand.
func Structured(label byte) bool {
	return label == 'H' || label == 'E'
}

// Counts is the raw material of a discrepancy score.
type Counts struct {
	Diffs int // Columns where both are structured and differ
	LenA  int // Structured columns in a
	LenB  int // Structured columns in b
}

// Denominator is the smaller structured count.
func (c Counts) Denominator() int {
	return min(c.LenA, c.LenB)
}

// Count tallies the structured columns of two equal-length projected
// strings.
func Count(a, b string) (Counts, error) {
	if len(a) != len(b) {
		return Counts{}, fmt.Errorf("%w: projected lengths %d and %d", align.ErrLengthMismatch, len(a), len(b))
	}

	var c Counts
	for i := 0; i < len(a); i++ {
		sa, sb := Structured(a[i]), Structured(b[i])
		if sa {
			c.LenA++
		}
		if sb {
			c.LenB++
		}
		if sa && sb && a[i] != b[i] {
			c.Diffs++
		}
	}
	return c, nil
}

// Discrepancy returns the fraction of structured columns on which a and b
// disagree, normalised by the smaller structured count. The result is in
// [0, 1].
func Discrepancy(a, b string) (float64, error) {
	c, err := Count(a, b)
	if err != nil {
		return 0, err
	}
	d := c.Denominator()
	if d == 0 {
		return 0, ErrNoStructuredResidues
	}
	return float64(c.Diffs) / float64(d), nil
}

// PairError ties a scoring failure to the two accessions involved.
type PairError struct {
	A, B string
	Err  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("score %s vs %s: %v", e.A, e.B, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}
