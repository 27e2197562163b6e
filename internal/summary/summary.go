// Package summary folds per-job results into the overall outcome of a run
// and reports it.
package summary

import (
	"github.com/backmassage/chaptersplit/internal/dispatch"
)

// Status is the overall outcome of a run.
type Status int

const (
	AllSucceeded Status = iota
	PartialFailure
	AllFailed
)

func (s Status) String() string {
	switch s {
	case AllSucceeded:
		return "AllSucceeded"
	case PartialFailure:
		return "PartialFailure"
	case AllFailed:
		return "AllFailed"
	}
	return "Unknown"
}

// MarshalText renders the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Summary holds results in chapter order and the derived status.
type Summary struct {
	Results []dispatch.Result
	Status  Status
}

// Aggregate derives the status of results without reordering them. An
// empty result set counts as AllSucceeded.
func Aggregate(results []dispatch.Result) Summary {
	s := Summary{Results: append([]dispatch.Result(nil), results...)}
	failed := s.Failed()
	switch {
	case failed == 0:
		s.Status = AllSucceeded
	case failed == len(results):
		s.Status = AllFailed
	default:
		s.Status = PartialFailure
	}
	return s
}

// OK reports whether every job succeeded.
func (s Summary) OK() bool { return s.Status == AllSucceeded }

// Succeeded returns the number of successful jobs.
func (s Summary) Succeeded() int { return len(s.Results) - s.Failed() }

// Failed returns the number of failed jobs.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if !r.Succeeded() {
			n++
		}
	}
	return n
}

// Failures returns the failed results in chapter order.
func (s Summary) Failures() []dispatch.Result {
	var out []dispatch.Result
	for _, r := range s.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}
