package recompute

import (
	"time"

	"github.com/specialistvlad/featuregraph/internal/document"
)

// Failure describes one object that ended a pass in the error state.
type Failure struct {
	Object  string `json:"object" yaml:"object"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Err     error  `json:"-" yaml:"-"`
}

// Report is the outcome of one recompute pass.
type Report struct {
	Document string            `json:"document" yaml:"document"`
	Success  bool              `json:"success" yaml:"success"`
	Errors   map[string]string `json:"errors" yaml:"errors"`
	Failures []Failure         `json:"failures" yaml:"failures"`
	// Executed lists successful executions in the order they happened. An
	// object re-queued during the pass appears once per execution.
	Executed []string      `json:"executed" yaml:"executed"`
	Skipped  []string      `json:"skipped" yaml:"skipped"`
	Pending  []string      `json:"pending" yaml:"pending"`
	Cycle    []string      `json:"cycle" yaml:"cycle"`
	Aborted  bool          `json:"aborted" yaml:"aborted"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

func newReport(doc string, started time.Time) *Report {
	return &Report{
		Document: doc,
		Errors:   make(map[string]string),
		Started:  started,
	}
}

func (r *Report) fail(name string, err error) {
	kind := KindOf(err)
	r.Errors[name] = err.Error()
	r.Failures = append(r.Failures, Failure{Object: name, Kind: kind, Message: err.Error(), Err: err})
	if kind == KindUpstream {
		r.Skipped = append(r.Skipped, name)
	}
}

// Failed returns the names of objects that failed in this pass, skipped
// objects excluded.
func (r *Report) Failed() []string {
	var out []string
	for _, f := range r.Failures {
		if f.Kind != KindUpstream {
			out = append(out, f.Object)
		}
	}
	return out
}

// Result converts the report into the summary handed to document observers.
func (r *Report) Result() document.RecomputeResult {
	return document.RecomputeResult{
		Executed: r.Executed,
		Failed:   r.Failed(),
		Skipped:  r.Skipped,
		Aborted:  r.Aborted,
		Duration: r.Duration,
	}
}
