package reconcile

import (
	"time"

	"crowdin-distributor/core/errdefs"
)

// FailedOutcome reports a pass that could not start, e.g. because the scan or the
// remote state fetch failed.
func FailedOutcome(err error) *RunOutcome {
	now := time.Now()
	out := &RunOutcome{
		Status:     StatusFailed,
		Results:    []ActionResult{},
		Orphans:    []Orphan{},
		StartedAt:  now,
		FinishedAt: now,
	}
	if err != nil {
		out.Error = err.Error()
		out.Cancelled = errdefs.IsCancelled(err)
	}
	return out
}

// aggregateStatus derives the run-level status from the per-action results.
func aggregateStatus(out *RunOutcome) Status {
	if out.Cancelled {
		return StatusPartiallyConverged
	}
	for _, r := range out.Results {
		if r.State != ResultSucceeded {
			return StatusPartiallyConverged
		}
	}
	return StatusConverged
}
