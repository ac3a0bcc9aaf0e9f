package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"crowdin-distributor/core/errdefs"
	"crowdin-distributor/core/resource"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures an Engine.
type Options struct {
	// Locales are the target locales whose translations are downloaded.
	Locales []string

	// Concurrency bounds how many files are processed at once.
	Concurrency int

	// Retry configures backoff for transient remote errors.
	Retry RetryPolicy
}

// Engine plans and executes reconciliation passes.
type Engine struct {
	remote  Remote
	sink    Sink
	opts    Options
	retrier *Retrier
	now     func() time.Time
	log     *zap.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) EngineOption {
	return func(e *Engine) { e.retrier.sleeper = s }
}

// WithClock replaces the clock used to stamp results.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithJitterSource replaces the random source of backoff jitter.
func WithJitterSource(random func() float64) EngineOption {
	return func(e *Engine) { e.retrier.random = random }
}

// NewEngine builds an engine. A nil sink discards downloads.
func NewEngine(remote Remote, sink Sink, opts Options, log *zap.Logger, options ...EngineOption) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if sink == nil {
		sink = DiscardSink
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		remote:  remote,
		sink:    sink,
		opts:    opts,
		retrier: NewRetrier(opts.Retry, nil),
		now:     time.Now,
		log:     log,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// FetchState fetches the remote project state, retrying transient failures.
func (e *Engine) FetchState(ctx context.Context) (ProjectState, error) {
	var state ProjectState
	res := e.retrier.Do(ctx, func(callCtx context.Context) error {
		var err error
		state, err = e.remote.FetchProjectState(callCtx)
		return err
	})
	if res.Err != nil {
		return nil, fmt.Errorf("fetching remote state: %w", res.Err)
	}
	return state, nil
}

// Plan fetches the remote state and diffs it against snapshot without executing anything.
func (e *Engine) Plan(ctx context.Context, snapshot *resource.Snapshot, observed Observed) (*Plan, ProjectState, error) {
	state, err := e.FetchState(ctx)
	if err != nil {
		return nil, nil, err
	}
	return Diff(snapshot, state, observed, e.opts.Locales), state, nil
}

// Run performs one full pass: fetch, diff, execute. A failed fetch yields a
// Failed outcome and a nil plan.
func (e *Engine) Run(ctx context.Context, snapshot *resource.Snapshot, observed Observed) (*Plan, *RunOutcome) {
	started := e.now()
	plan, state, err := e.Plan(ctx, snapshot, observed)
	if err != nil {
		out := FailedOutcome(err)
		out.StartedAt = started
		out.FinishedAt = e.now()
		out.Observed = observed.Clone()
		return nil, out
	}

	e.log.Info("Reconciliation planned",
		zap.Int("files", plan.Summary.Files),
		zap.Int("upload_new", plan.Summary.UploadNew),
		zap.Int("upload_changed", plan.Summary.UploadChanged),
		zap.Int("downloads", plan.Summary.Downloads),
		zap.Int("noops", plan.Summary.NoOps),
		zap.Int("orphans", plan.Summary.Orphans),
	)

	out := e.Execute(ctx, snapshot, plan)
	out.StartedAt = started
	out.Observed = NextObserved(observed, state, plan, out.Results, e.opts.Locales)
	return plan, out
}

// Execute applies plan. Files run concurrently up to Options.Concurrency; each
// worker owns its partial result slice and the partials are merged in plan order.
func (e *Engine) Execute(ctx context.Context, snapshot *resource.Snapshot, plan *Plan) *RunOutcome {
	started := e.now()
	partials := make([][]ActionResult, len(plan.Files))
	var interrupted atomic.Bool

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, fp := range plan.Files {
		g.Go(func() error {
			file, _ := snapshot.File(fp.Path)
			partials[i] = e.executeFile(ctx, fp, file, &interrupted)
			return nil
		})
	}
	_ = g.Wait()

	var results []ActionResult
	for _, p := range partials {
		results = append(results, p...)
	}

	out := &RunOutcome{
		Results:    results,
		Orphans:    plan.Orphans,
		Cancelled:  interrupted.Load(),
		StartedAt:  started,
		FinishedAt: e.now(),
	}
	out.Status = aggregateStatus(out)

	e.log.Info("Reconciliation finished",
		zap.String("status", string(out.Status)),
		zap.Bool("cancelled", out.Cancelled),
		zap.Int("succeeded", out.Count(ResultSucceeded)),
		zap.Int("failed", out.Count(ResultFailed)),
		zap.Int("skipped", out.Count(ResultSkipped)),
	)
	return out
}

// executeFile runs the actions of one file in order: uploads, NoOps, downloads.
// interrupted is set when cancellation stops one of its remote calls.
func (e *Engine) executeFile(ctx context.Context, fp FilePlan, file *resource.File, interrupted *atomic.Bool) []ActionResult {
	log := e.log.With(zap.String("file", fp.Path))
	results := make([]ActionResult, 0, len(fp.Actions))

	var uploads, downloads []Action
	for _, a := range fp.Actions {
		switch {
		case a.Kind.IsUpload():
			uploads = append(uploads, a)
		case a.Kind == ActionDownload:
			downloads = append(downloads, a)
		default:
			results = append(results, ActionResult{Action: a, State: ResultSucceeded, At: e.now()})
		}
	}

	var uploadErr error
	if len(uploads) > 0 {
		var revision string
		res := e.retrier.Do(ctx, func(callCtx context.Context) error {
			if file == nil {
				return &errdefs.ValidationError{Op: "upload source file", Message: "file not in snapshot"}
			}
			var err error
			revision, err = e.remote.UploadSourceFile(callCtx, fp.Path, file.Content)
			return err
		})
		at := e.now()
		uploadErr = res.Err
		if res.State == RetryCancelled {
			interrupted.Store(true)
		}

		for _, a := range uploads {
			r := ActionResult{Action: a, Attempts: res.Attempts, At: at}
			switch {
			case res.State == RetrySucceeded:
				r.State = ResultSucceeded
				r.Revision = revision
			case res.State == RetryCancelled && res.Attempts == 0:
				r.State = ResultSkipped
				r.Reason = "cancelled"
			default:
				r.State = ResultFailed
				r.Reason = describe(res)
			}
			results = append(results, r)
		}

		if uploadErr != nil {
			log.Warn("Source upload failed", zap.Int("actions", len(uploads)), zap.Error(uploadErr))
		} else {
			log.Debug("Source uploaded", zap.String("revision", revision), zap.Int("actions", len(uploads)))
		}
	}

	for _, a := range downloads {
		if uploadErr != nil {
			results = append(results, ActionResult{
				Action: a,
				State:  ResultSkipped,
				Reason: fmt.Sprintf("upload of %s did not succeed", fp.Path),
				At:     e.now(),
			})
			continue
		}
		results = append(results, e.download(ctx, a, log, interrupted))
	}

	return results
}

func (e *Engine) download(ctx context.Context, a Action, log *zap.Logger, interrupted *atomic.Bool) ActionResult {
	var content []byte
	res := e.retrier.Do(ctx, func(callCtx context.Context) error {
		var err error
		content, err = e.remote.DownloadTranslations(callCtx, a.Locale, a.Path)
		return err
	})

	r := ActionResult{Action: a, Attempts: res.Attempts}
	if res.State == RetryCancelled {
		interrupted.Store(true)
	}
	switch {
	case res.State == RetryCancelled && res.Attempts == 0:
		r.State = ResultSkipped
		r.Reason = "cancelled"
	case res.State != RetrySucceeded:
		r.State = ResultFailed
		r.Reason = describe(res)
		log.Warn("Translation download failed", zap.String("locale", a.Locale), zap.Error(res.Err))
	default:
		if err := e.sink.Accept(context.WithoutCancel(ctx), a.Locale, a.Path, content); err != nil {
			r.State = ResultFailed
			r.Reason = fmt.Sprintf("rejected: %v", err)
			log.Warn("Downloaded translation rejected", zap.String("locale", a.Locale), zap.Error(err))
		} else {
			r.State = ResultSucceeded
			log.Debug("Translation downloaded", zap.String("locale", a.Locale), zap.Int("bytes", len(content)))
		}
	}
	r.At = e.now()
	return r
}

func describe(res RetryResult) string {
	switch res.State {
	case RetryExhausted:
		return fmt.Sprintf("retries exhausted after %d attempts: %v", res.Attempts, res.Err)
	case RetryRejected:
		return fmt.Sprintf("permanent error: %v", res.Err)
	case RetryCancelled:
		return fmt.Sprintf("cancelled: %v", res.Err)
	default:
		return fmt.Sprintf("%s: %v", res.State, res.Err)
	}
}
