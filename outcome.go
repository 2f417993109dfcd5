package motis

import (
	"errors"

	"github.com/ronanociosoig/Motis/ir"
)

// Status classifies what happened to one decoded property.
type Status int

const (
	// Applied: the coerced value was assigned to the target property.
	Applied Status = iota
	// Skipped: the key fed no property (unmapped under a rejecting
	// policy, dead-end key path, or no such property).
	Skipped
	// Rejected: validation or coercion failed; nothing was assigned.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "Applied"
	case Skipped:
		return "Skipped"
	case Rejected:
		return "Rejected"
	}
	return "<unknown status>"
}

// Outcome is the per-key result of one decode step. Failure of one key
// never aborts the decode of the others; outcomes let callers inspect
// what was and was not applied.
type Outcome struct {
	Key      string
	Status   Status
	Value    any      // assigned value when Applied
	Original *ir.Node // payload value when Rejected
	Err      error
}

// Result collects the outcomes of one DecodeKeyedValues call. It is not
// retained by the decoder.
type Result struct {
	Outcomes []Outcome
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Applied returns the outcomes whose values were assigned.
func (r *Result) Applied() []Outcome {
	return r.filter(Applied)
}

// Rejected returns the outcomes that failed validation or coercion.
func (r *Result) Rejected() []Outcome {
	return r.filter(Rejected)
}

func (r *Result) filter(s Status) []Outcome {
	var res []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			res = append(res, o)
		}
	}
	return res
}

// Err joins the errors of all rejected outcomes, or nil if every key
// either applied or was skipped.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == Rejected && o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
