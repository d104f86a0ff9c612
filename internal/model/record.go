package model

// Record is one protein entry as it moves through the pipeline.
// Each stage returns a copy with the next field filled in.
type Record struct {
	Accession string `json:"accession"`           // Unique key within a run
	Name      string `json:"name,omitempty"`      // Entry name from the FASTA header
	Header    string `json:"header,omitempty"`    // Raw FASTA header line (without '>')
	Category  string `json:"category"`            // Input group the record came from
	Sequence  string `json:"sequence"`            // Ungapped amino-acid sequence
	Labels    string `json:"labels,omitempty"`    // Ungapped SS prediction
	Aligned   string `json:"aligned,omitempty"`   // Gapped sequence from the MSA
	Projected string `json:"projected,omitempty"` // Labels in alignment coordinates
}

// WithLabels returns a copy of r carrying the given prediction.
func (r Record) WithLabels(labels string) Record {
	r.Labels = labels
	return r
}

// WithAligned returns a copy of r carrying its aligned sequence.
func (r Record) WithAligned(aligned string) Record {
	r.Aligned = aligned
	return r
}

// WithProjected returns a copy of r carrying its projected labels.
func (r Record) WithProjected(projected string) Record {
	r.Projected = projected
	return r
}

// Categories returns the distinct categories in first-seen order.
func Categories(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}
