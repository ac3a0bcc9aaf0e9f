package distributor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crowdin-distributor/core/ledger"
	"crowdin-distributor/core/logger"
	"crowdin-distributor/core/publish"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Report is the result of one distributor pass.
type Report struct {
	RunID        string                 `json:"run_id"`
	Plan         *reconcile.PlanSummary `json:"plan,omitempty"`
	Outcome      *reconcile.RunOutcome  `json:"outcome"`
	Decision     publish.Decision       `json:"decision"`
	Published    string                 `json:"published,omitempty"`
	PublishError string                 `json:"publish_error,omitempty"`
	LedgerError  string                 `json:"ledger_error,omitempty"`
}

// Converged reports whether the pass converged and any configured publish succeeded.
func (r *Report) Converged() bool {
	return r.Decision.MayPublish && r.PublishError == ""
}

// Options wires a Service.
type Options struct {
	FS        afero.Fs
	Registry  *resource.Registry
	Remote    reconcile.Remote
	Ledger    ledger.Store
	Publisher publish.Publisher
	Resources resource.Config
	Sync      reconcile.Config
	Publish   publish.Config
	Logger    *zap.Logger

	// EngineOptions are passed to every engine the service builds.
	EngineOptions []reconcile.EngineOption
}

// Service runs distributor passes: scan, reconcile, record progress, gate, publish.
type Service struct {
	fs        resource.FS
	afs       afero.Fs
	registry  *resource.Registry
	scanner   *resource.Scanner
	remote    reconcile.Remote
	ledger    ledger.Store
	publisher publish.Publisher
	gate      publish.Gate
	resources resource.Config
	sync      reconcile.Config
	publish   publish.Config
	logger    *zap.Logger
	engineOps []reconcile.EngineOption

	group singleflight.Group

	mu       sync.RWMutex
	last     *Report
	inflight chan struct{}
}

// NewService creates a distributor service.
func NewService(opts Options) *Service {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Registry == nil {
		opts.Registry = resource.DefaultRegistry()
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	fs := resource.NewFS(opts.FS)
	return &Service{
		fs:        fs,
		afs:       opts.FS,
		registry:  opts.Registry,
		scanner:   resource.NewScanner(fs, opts.Registry),
		remote:    opts.Remote,
		ledger:    opts.Ledger,
		publisher: opts.Publisher,
		gate:      publish.NewGate(),
		resources: opts.Resources,
		sync:      opts.Sync,
		publish:   opts.Publish,
		logger:    opts.Logger,
		engineOps: opts.EngineOptions,
	}
}

// Scan builds the local snapshot of every configured resource file.
func (s *Service) Scan(ctx context.Context) (*resource.Snapshot, error) {
	paths, err := s.fs.ListResourceFiles(s.resources.Root, s.resources.Patterns)
	if err != nil {
		return nil, err
	}
	return s.scanner.Scan(ctx, s.resources.Root, paths)
}

func (s *Service) sink(snapshot *resource.Snapshot) *FileSink {
	return NewFileSink(s.fs, s.registry, snapshot, s.resources.OutputRoot, s.resources.OutputPattern)
}

func (s *Service) engine(snapshot *resource.Snapshot, log *zap.Logger) *reconcile.Engine {
	return reconcile.NewEngine(s.remote, s.sink(snapshot), s.sync.Options(), log, s.engineOps...)
}

// Plan computes the plan of a pass without executing it.
func (s *Service) Plan(ctx context.Context) (*resource.Snapshot, *reconcile.Plan, reconcile.ProjectState, error) {
	snapshot, err := s.Scan(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	observed, err := s.ledger.Load(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading ledger: %w", err)
	}
	plan, state, err := s.engine(snapshot, s.logger).Plan(ctx, snapshot, observed)
	if err != nil {
		return nil, nil, nil, err
	}
	return snapshot, plan, state, nil
}

// Run executes one pass. Concurrent callers share the pass already in flight.
func (s *Service) Run(ctx context.Context) *Report {
	v, _, _ := s.group.Do("run", func() (any, error) {
		return s.runOnce(ctx), nil
	})
	return v.(*Report)
}

// Trigger starts a pass in the background, joining one already in flight.
func (s *Service) Trigger(ctx context.Context) <-chan *Report {
	out := make(chan *Report, 1)
	ch := s.group.DoChan("run", func() (any, error) {
		return s.runOnce(ctx), nil
	})
	go func() {
		res := <-ch
		out <- res.Val.(*Report)
	}()
	return out
}

// Last returns the report of the most recent finished pass, or nil.
func (s *Service) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Service) runOnce(ctx context.Context) *Report {
	runID := logger.NewRunID()
	log := logger.WithRun(s.logger, runID)
	log.Info("Reconciliation pass started", zap.String("root", s.resources.Root), zap.Strings("locales", s.sync.Locales))

	report := &Report{RunID: runID}
	done := make(chan struct{})
	s.mu.Lock()
	s.inflight = done
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.last = report
		s.inflight = nil
		s.mu.Unlock()
		close(done)
	}()

	outcome, plan := s.reconcile(ctx, log)
	outcome.RunID = runID
	report.Outcome = outcome
	if plan != nil {
		summary := plan.Summary
		report.Plan = &summary
	}

	if outcome.Status != reconcile.StatusFailed {
		// the ledger must reflect work that already happened, even after cancellation
		if err := s.ledger.Save(context.WithoutCancel(ctx), outcome.Observed); err != nil {
			log.Error("Failed to save progress ledger", zap.Error(err))
			report.LedgerError = err.Error()
		}
	}

	report.Decision = s.gate.Decide(outcome)
	log.Info("Reconciliation pass finished",
		zap.String("status", string(outcome.Status)),
		zap.Bool("cancelled", outcome.Cancelled),
		zap.Int("succeeded", outcome.Count(reconcile.ResultSucceeded)),
		zap.Int("failed", outcome.Count(reconcile.ResultFailed)),
		zap.Int("skipped", outcome.Count(reconcile.ResultSkipped)),
		zap.Int("orphans", len(outcome.Orphans)),
		zap.Bool("may_publish", report.Decision.MayPublish),
	)

	if !report.Decision.MayPublish {
		for _, f := range report.Decision.Failures {
			log.Warn("Publishing blocked", zap.String("file", f.File), zap.String("action", f.Action), zap.String("reason", f.Reason))
		}
		return report
	}

	if s.publish.Enabled && s.publisher != nil {
		location, err := s.Publish(ctx, report.Decision)
		if err != nil {
			log.Error("Publishing failed", zap.Error(err))
			report.PublishError = err.Error()
		} else {
			log.Info("Translation bundle published", zap.String("location", location))
			report.Published = location
		}
	}
	return report
}

func (s *Service) reconcile(ctx context.Context, log *zap.Logger) (*reconcile.RunOutcome, *reconcile.Plan) {
	snapshot, err := s.Scan(ctx)
	if err != nil {
		log.Error("Scan failed", zap.Error(err))
		return reconcile.FailedOutcome(fmt.Errorf("scanning resources: %w", err)), nil
	}
	observed, err := s.ledger.Load(ctx)
	if err != nil {
		log.Error("Loading ledger failed", zap.Error(err))
		return reconcile.FailedOutcome(fmt.Errorf("loading ledger: %w", err)), nil
	}
	plan, outcome := s.engine(snapshot, log).Run(ctx, snapshot, observed)
	return outcome, plan
}

// Publish bundles the translation output and hands it to the publisher when
// decision allows it.
func (s *Service) Publish(ctx context.Context, decision publish.Decision) (string, error) {
	if s.publisher == nil {
		return "", errors.New("no publisher configured")
	}
	coords, err := publish.ResolveCoordinates(s.afs, s.publish)
	if err != nil {
		return "", err
	}
	data, err := publish.Bundle(s.afs, s.resources.OutputRoot)
	if err != nil {
		return "", err
	}
	return publish.Gated(ctx, decision, s.publisher, publish.Artifact{
		Coordinates: coords,
		Classifier:  s.publish.Classifier,
		Content:     data,
	})
}

// ValidateOutput checks every translation already written under the output root
// against its source. It returns how many files were checked.
func (s *Service) ValidateOutput(ctx context.Context) (int, error) {
	snapshot, err := s.Scan(ctx)
	if err != nil {
		return 0, err
	}
	sink := s.sink(snapshot)

	checked := 0
	var errs []error
	for _, locale := range s.sync.Locales {
		for _, file := range snapshot.Paths() {
			if err := ctx.Err(); err != nil {
				return checked, err
			}
			target := sink.Target(locale, file)
			exists, err := afero.Exists(s.afs, target)
			if err != nil {
				return checked, err
			}
			if !exists {
				continue
			}
			content, err := s.fs.ReadFile(target)
			if err != nil {
				return checked, err
			}
			checked++
			values, err := s.registry.ParseValues(file, content)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", target, err))
				continue
			}
			src, _ := snapshot.File(file)
			if err := resource.NewValidator(src.Values()).Validate(locale+"/"+file, values); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return checked, errors.Join(errs...)
}

// Shutdown waits up to timeout for a pass in flight.
func (s *Service) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	done := s.inflight
	s.mu.RUnlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("Shutdown timed out waiting for reconciliation pass")
	}
}
