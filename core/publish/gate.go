package publish

import (
	"fmt"
	"io"

	"crowdin-distributor/core/reconcile"
)

// Decision is the gate's verdict plus the failure report.
type Decision struct {
	MayPublish bool                `json:"may_publish"`
	Status     reconcile.Status    `json:"status"`
	Cancelled  bool                `json:"cancelled"`
	Failures   []reconcile.Failure `json:"failures"`
}

// Gate blocks publication unless translation state converged.
type Gate struct{}

// NewGate returns the publish gate.
func NewGate() Gate { return Gate{} }

// Decide evaluates outcome. A nil outcome is treated as a failed run.
func (Gate) Decide(outcome *reconcile.RunOutcome) Decision {
	if outcome == nil {
		return Decision{
			Status:   reconcile.StatusFailed,
			Failures: []reconcile.Failure{{Action: "run", Reason: "run failed: no outcome"}},
		}
	}

	d := Decision{
		Status:    outcome.Status,
		Cancelled: outcome.Cancelled,
		Failures:  outcome.Failures(),
	}
	if d.Failures == nil {
		d.Failures = []reconcile.Failure{}
	}

	switch {
	case outcome.Status == reconcile.StatusFailed:
		reason := "run failed"
		if outcome.Error != "" {
			reason = "run failed: " + outcome.Error
		}
		d.Failures = append(d.Failures, reconcile.Failure{Action: "run", Reason: reason})
	case outcome.Cancelled:
		d.Failures = append(d.Failures, reconcile.Failure{Action: "run", Reason: "run cancelled"})
	case outcome.Status != reconcile.StatusConverged:
		if len(d.Failures) == 0 {
			d.Failures = append(d.Failures, reconcile.Failure{Action: "run", Reason: fmt.Sprintf("run %s", outcome.Status)})
		}
	}

	d.MayPublish = outcome.Status == reconcile.StatusConverged && !outcome.Cancelled && len(d.Failures) == 0
	return d
}

// WriteReport prints the failure report, one failure per line.
func (d Decision) WriteReport(w io.Writer) error {
	if d.MayPublish {
		_, err := fmt.Fprintf(w, "translation state %s, publishing allowed\n", d.Status)
		return err
	}
	if _, err := fmt.Fprintf(w, "publishing blocked: translation state %s (%d failures)\n", d.Status, len(d.Failures)); err != nil {
		return err
	}
	for _, f := range d.Failures {
		file := f.File
		if file == "" {
			file = "-"
		}
		if _, err := fmt.Fprintf(w, "  %s\t%s\t%s\n", file, f.Action, f.Reason); err != nil {
			return err
		}
	}
	return nil
}
