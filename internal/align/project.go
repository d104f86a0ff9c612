// Package align maps per-residue labels onto multiple-sequence-alignment
// coordinates.
package align

import (
	"errors"
	"fmt"
)

const (
	// Gap marks an alignment gap column in both sequences and labels.
	Gap = '-'
	// Coil replaces placeholder gaps emitted by the predictor.
	Coil = 'C'
)

// ErrLengthMismatch is returned when a label string is longer than the
// residues it is supposed to describe.
var ErrLengthMismatch = errors.New("length mismatch")

// Direction selects which terminus a projection is anchored at.
type Direction int

const (
	// Forward anchors labels[0] at the first residue.
	Forward Direction = iota
	// Reverse anchors the last label at the last residue.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Project walks aligned column by column and emits one label per column.
// Gap columns stay gaps and do not consume a label. Residue columns take the
// next label; a '-' label becomes coil, and residues past the end of labels
// become gaps. The result always has len(aligned) bytes.
func Project(labels, aligned string) string {
	out := make([]byte, len(aligned))
	j := 0
	for i := 0; i < len(aligned); i++ {
		switch {
		case aligned[i] == Gap:
			out[i] = Gap
			continue
		case j >= len(labels):
			out[i] = Gap
		case labels[j] == Gap:
			out[i] = Coil
		default:
			out[i] = labels[j]
		}
		j++
	}
	return string(out)
}

// ProjectReverse is Project anchored at the C-terminus, for labels that
// only cover the tail of the aligned residues.
func ProjectReverse(labels, aligned string) string {
	return reverse(Project(reverse(labels), reverse(aligned)))
}

// ProjectChecked projects in the given direction and fails when labels
// outnumber the residues of aligned. Shorter labels are accepted.
func ProjectChecked(labels, aligned string, dir Direction) (string, error) {
	if n := Residues(aligned); len(labels) > n {
		return "", fmt.Errorf("%w: %d labels for %d aligned residues", ErrLengthMismatch, len(labels), n)
	}
	if dir == Reverse {
		return ProjectReverse(labels, aligned), nil
	}
	return Project(labels, aligned), nil
}

// Residues counts the non-gap columns of aligned.
func Residues(aligned string) int {
	n := 0
	for i := 0; i < len(aligned); i++ {
		if aligned[i] != Gap {
			n++
		}
	}
	return n
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
