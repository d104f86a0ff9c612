package model

import "time"

// Report is the complete result of one comparison run.
type Report struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Inputs     []string  `json:"inputs"`     // FASTA paths, one per category
	Categories []string  `json:"categories"` // Category names in input order
	Predictor  string    `json:"predictor"`
	Aligner    string    `json:"aligner"`
	Threshold  float64   `json:"threshold"`
	Trim       int       `json:"trim,omitempty"`
	ZeroPolicy string    `json:"zero_policy"`

	Rows     []Row     `json:"rows"`               // One per compared accession
	Excluded []Exclude `json:"excluded,omitempty"` // Records dropped before comparison
}

// Row is the per-accession outcome.
type Row struct {
	Accession string `json:"accession"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category"`
	Header    string `json:"header,omitempty"`
	Sequence  string `json:"sequence"`
	Labels    string `json:"labels"`
	Aligned   string `json:"aligned"`
	Projected string `json:"projected"`

	CrossScore   float64 `json:"cross_score"`             // Average discrepancy vs. the other category
	SameScore    float64 `json:"same_score"`              // Average discrepancy within its own category
	CrossPairs   int     `json:"cross_pairs"`             // Partners contributing to CrossScore
	SamePairs    int     `json:"same_pairs"`              // Partners contributing to SameScore
	SkippedPairs int     `json:"skipped_pairs,omitempty"` // Pairs with no structured residues
	Mismatches   int     `json:"mismatches"`              // Legacy count vs. the other category's consensus
	Candidate    bool    `json:"candidate"`               // CrossScore >= threshold
}

// Exclude records why a record never reached the comparison.
type Exclude struct {
	Accession string `json:"accession"`
	Category  string `json:"category"`
	Stage     string `json:"stage"` // predict, align, project
	Reason    string `json:"reason"`
}

// Candidates returns the rows flagged as fold-switch candidates.
func (r *Report) Candidates() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Candidate {
			out = append(out, row)
		}
	}
	return out
}
