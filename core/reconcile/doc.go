// Package reconcile converges a remote translation project with local source files.
//
// A pass has two halves. Diff is pure: it compares the local Snapshot with the
// remote ProjectState and the last observed translation progress, and returns a
// Plan. Execute is effectful: it applies the Plan against a Remote, writing
// downloaded translations to a Sink, and aggregates a RunOutcome.
//
// # Planning
//
// For every local file, keyed by translation key:
//   - local only: UploadNew
//   - both, hash differs: UploadChanged
//   - both, hash equal: NoOp
//   - remote only: orphan (reported, never deleted)
//
// For every target locale whose completion increased since the last observation,
// or that was never observed, a Download is scheduled. Within a file, uploads come
// first in source order, then NoOps, then downloads sorted by locale.
//
// # Execution
//
// Files are independent and run on a bounded worker pool. Actions of one file run
// strictly in order: all upload actions of a file are satisfied by a single
// UploadSourceFile call, and downloads start only once it was acknowledged. A
// failed upload skips the file's downloads.
//
// Each remote call goes through a Retrier, an explicit state machine
// (Idle, Attempting, Backoff, then Succeeded, Exhausted, Rejected or Cancelled).
// Transient errors back off exponentially, permanent errors fail immediately.
//
// # Cancellation
//
// Cancelling the context stops new actions from starting. Calls already in flight
// run to completion on a context detached from the cancellation, a pending backoff
// is interrupted, and the outcome is PartiallyConverged with Cancelled set.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(remote, sink, reconcile.Options{
//	    Locales:     []string{"de", "fr"},
//	    Concurrency: 4,
//	    Retry:       reconcile.DefaultRetryPolicy(),
//	}, logger)
//
//	plan, outcome := engine.Run(ctx, snapshot, observed)
//	if outcome.Status != reconcile.StatusConverged {
//	    // report outcome.Failures()
//	}
package reconcile
