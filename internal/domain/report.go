package domain

import "time"

// Job describes one edit of a fort.13 file.
type Job struct {
	AttributePath string
	MeshPath      string
	OutputPath    string

	Criterion            Predicate
	CriterionDescription string
	Modifier             Modifier
	ModifierDescription  string

	// Verify re-reads input and output after the rewrite and fails the job
	// if anything outside the edited block changed.
	Verify bool
}

// RewriteResult summarizes one pass over the attribute file.
type RewriteResult struct {
	Records  int
	Modified int

	// MinValue and MaxValue span the new values written; both are zero when
	// Modified is zero.
	MinValue float64
	MaxValue float64
}

// Observe folds a newly written value into the result.
func (r *RewriteResult) Observe(v float64) {
	if r.Modified == 0 || v < r.MinValue {
		r.MinValue = v
	}
	if r.Modified == 0 || v > r.MaxValue {
		r.MaxValue = v
	}
	r.Modified++
}

// Report is the run summary handed to report sinks.
type Report struct {
	AttributeFile string `json:"attribute_file" yaml:"attribute_file"`
	MeshFile      string `json:"mesh_file" yaml:"mesh_file"`
	OutputFile    string `json:"output_file" yaml:"output_file"`
	Criterion     string `json:"criterion" yaml:"criterion"`
	Modifier      string `json:"modifier" yaml:"modifier"`

	MeshNodes int      `json:"mesh_nodes" yaml:"mesh_nodes"`
	Records   int      `json:"records" yaml:"records"`
	Modified  int      `json:"modified" yaml:"modified"`
	MinValue  *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`

	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt     time.Time `json:"completed_at" yaml:"completed_at"`
	DurationSeconds float64   `json:"duration_seconds" yaml:"duration_seconds"`
}

// NewReport builds a Report for a finished job.
func NewReport(job Job, meshNodes int, res RewriteResult, started, completed time.Time) Report {
	r := Report{
		AttributeFile:   job.AttributePath,
		MeshFile:        job.MeshPath,
		OutputFile:      job.OutputPath,
		Criterion:       job.CriterionDescription,
		Modifier:        job.ModifierDescription,
		MeshNodes:       meshNodes,
		Records:         res.Records,
		Modified:        res.Modified,
		StartedAt:       started,
		CompletedAt:     completed,
		DurationSeconds: completed.Sub(started).Seconds(),
	}
	if res.Modified > 0 {
		lo, hi := res.MinValue, res.MaxValue
		r.MinValue = &lo
		r.MaxValue = &hi
	}
	return r
}
