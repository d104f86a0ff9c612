package align

import (
	"errors"
	"strings"
	"testing"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		labels  string
		aligned string
		want    string
	}{
		{"empty", "", "", ""},
		{"empty labels", "", "AC-G", "----"},
		{"empty alignment", "HHE", "", ""},
		{"identity", "HHCEE", "MKTAY", "HHCEE"},
		{"gaps skip labels", "HEC", "A-C-D", "H-E-C"},
		{"leading and trailing gaps", "HE", "--AC--", "--HE--"},
		{"placeholder becomes coil", "H-E", "MKT", "HCE"},
		{"labels exhausted", "HE", "AC-GT", "HE---"},
		{"all gaps", "HHH", "----", "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.labels, tt.aligned)
			if got != tt.want {
				t.Errorf("Project(%q, %q) = %q, want %q", tt.labels, tt.aligned, got, tt.want)
			}
		})
	}
}

func TestProject_Invariants(t *testing.T) {
	cases := []struct{ labels, aligned string }{
		{"HHHHEEEECCC", "MK--TAYIAK-QRQISFVK"},
		{"-H-E-", "A-B-C-D-E-F"},
		{"HE", "----AC---"},
		{"HECHECHECHEC", "ABC"},
	}

	for _, c := range cases {
		got := Project(c.labels, c.aligned)
		if len(got) != len(c.aligned) {
			t.Fatalf("length %d, want %d", len(got), len(c.aligned))
		}
		for i := range c.aligned {
			if c.aligned[i] == Gap && got[i] != Gap {
				t.Errorf("column %d: aligned gap projected to %q", i, got[i])
			}
		}
		// Every residue that has a label gets a non-gap label.
		j := 0
		for i := range c.aligned {
			if c.aligned[i] == Gap {
				continue
			}
			if j < len(c.labels) && got[i] == Gap {
				t.Errorf("column %d: labelled residue projected to gap", i)
			}
			j++
		}
	}
}

func TestProject_IdentityReplacesPlaceholders(t *testing.T) {
	labels := "--HHHH-EEE--"
	aligned := strings.Repeat("A", len(labels))

	got := Project(labels, aligned)
	want := strings.ReplaceAll(labels, "-", "C")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProjectReverse(t *testing.T) {
	// Labels predicted for the last three residues only.
	got := ProjectReverse("HEE", "MK-TA-Y")
	if want := "---HE-E"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := ProjectReverse("", ""); got != "" {
		t.Errorf("empty input gave %q", got)
	}
}

func TestProjectChecked(t *testing.T) {
	got, err := ProjectChecked("HE", "AC-GT", Forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "HE---" {
		t.Errorf("got %q", got)
	}

	got, err = ProjectChecked("HE", "AC-GT", Reverse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "---HE" {
		t.Errorf("reverse got %q", got)
	}

	_, err = ProjectChecked("HECHE", "AC-GT", Forward)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestResidues(t *testing.T) {
	if n := Residues("A-C--D"); n != 3 {
		t.Errorf("Residues = %d, want 3", n)
	}
	if n := Residues(""); n != 0 {
		t.Errorf("Residues(\"\") = %d", n)
	}
}
