package score

import "github.com/ppiankov/foldswitch/internal/align"

// CountMismatches counts columns where both labels are helix or strand and
// differ, walking from the chosen terminus and stopping at the end of the
// shorter string. Unlike Discrepancy it is unnormalised and tolerates
// unequal lengths; in Reverse the strings are compared tail to tail.
func CountMismatches(a, b string, dir align.Direction) int {
	n := min(len(a), len(b))
	count := 0
	for k := 0; k < n; k++ {
		i, j := k, k
		if dir == align.Reverse {
			i, j = len(a)-1-k, len(b)-1-k
		}
		if Structured(a[i]) && Structured(b[j]) && a[i] != b[j] {
			count++
		}
	}
	return count
}

// Consensus returns the most frequent label per column across projected
// strings of equal length. Ties and columns with no structured label
// resolve to coil; columns that are gaps in every input stay gaps.
func Consensus(projected []string) string {
	if len(projected) == 0 {
		return ""
	}
	width := len(projected[0])
	out := make([]byte, width)
	for col := 0; col < width; col++ {
		var h, e, gaps int
		for _, p := range projected {
			if col >= len(p) {
				gaps++
				continue
			}
			switch p[col] {
			case 'H':
				h++
			case 'E':
				e++
			case align.Gap:
				gaps++
			}
		}
		switch {
		case gaps == len(projected):
			out[col] = align.Gap
		case h > e:
			out[col] = 'H'
		case e > h:
			out[col] = 'E'
		default:
			out[col] = align.Coil
		}
	}
	return string(out)
}
