package reconcile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"crowdin-distributor/core/errdefs"
)

// RetryState is a state of the retry machine.
type RetryState int

const (
	RetryIdle RetryState = iota
	RetryAttempting
	RetryBackoff
	RetrySucceeded
	RetryExhausted
	RetryRejected
	RetryCancelled
)

func (s RetryState) String() string {
	switch s {
	case RetryIdle:
		return "idle"
	case RetryAttempting:
		return "attempting"
	case RetryBackoff:
		return "backoff"
	case RetrySucceeded:
		return "succeeded"
	case RetryExhausted:
		return "exhausted"
	case RetryRejected:
		return "rejected"
	case RetryCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("RetryState(%d)", int(s))
	}
}

// Terminal reports whether the machine stops in s.
func (s RetryState) Terminal() bool {
	return s >= RetrySucceeded
}

// RetryPolicy configures backoff for transient errors.
type RetryPolicy struct {
	// MaxAttempts caps the number of calls, including the first one.
	MaxAttempts int `json:"max_attempts"`
	// BaseDelay is the wait after the first failure; it doubles per attempt.
	BaseDelay time.Duration `json:"base_delay"`
	// MaxDelay caps a single wait.
	MaxDelay time.Duration `json:"max_delay"`
	// Jitter adds up to this fraction of the delay at random.
	Jitter float64 `json:"jitter"`
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second, Jitter: 0.2}
}

// Delay returns the backoff before attempt+1, without jitter.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && (p.MaxDelay <= 0 || d < p.MaxDelay); i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerSleeper sleeps on a real timer.
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// RetryResult is the terminal report of one retried call.
type RetryResult struct {
	State    RetryState
	Attempts int
	// Err is the last error, nil on success.
	Err error
	// Delays lists the waits taken between attempts.
	Delays []time.Duration
	// Trace lists every state visited, terminal state included.
	Trace []RetryState
}

// Retrier drives a call through the retry state machine.
type Retrier struct {
	policy  RetryPolicy
	sleeper Sleeper
	random  func() float64
}

// NewRetrier builds a retrier. A nil sleeper uses TimerSleeper.
func NewRetrier(policy RetryPolicy, sleeper Sleeper) *Retrier {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if sleeper == nil {
		sleeper = TimerSleeper
	}
	return &Retrier{policy: policy, sleeper: sleeper, random: rand.Float64}
}

// Do runs call until it succeeds, fails permanently, exhausts the policy or ctx is
// cancelled. Cancellation is only observed between attempts: call always receives
// a context detached from ctx's cancellation so in-flight requests complete.
func (r *Retrier) Do(ctx context.Context, call func(context.Context) error) RetryResult {
	var (
		res   RetryResult
		delay time.Duration
	)
	callCtx := context.WithoutCancel(ctx)
	state := RetryIdle

	for {
		res.Trace = append(res.Trace, state)

		switch state {
		case RetryIdle:
			if err := ctx.Err(); err != nil {
				res.Err = &errdefs.CancelledError{Err: err}
				state = RetryCancelled
				continue
			}
			state = RetryAttempting

		case RetryAttempting:
			res.Attempts++
			err := call(callCtx)
			res.Err = err
			switch {
			case err == nil:
				state = RetrySucceeded
			case !errdefs.IsTransient(err):
				state = RetryRejected
			case res.Attempts >= r.policy.MaxAttempts:
				state = RetryExhausted
			default:
				delay = r.backoff(res.Attempts, err)
				state = RetryBackoff
			}

		case RetryBackoff:
			res.Delays = append(res.Delays, delay)
			if err := r.sleeper.Sleep(ctx, delay); err != nil {
				res.Err = &errdefs.CancelledError{Err: fmt.Errorf("%w during backoff after: %v", err, res.Err)}
				state = RetryCancelled
				continue
			}
			state = RetryAttempting

		default:
			res.State = state
			return res
		}
	}
}

func (r *Retrier) backoff(attempt int, err error) time.Duration {
	d := r.policy.Delay(attempt)
	if r.policy.Jitter > 0 {
		d += time.Duration(r.random() * r.policy.Jitter * float64(d))
	}
	if hint := errdefs.RetryAfter(err); hint > d {
		d = hint
	}
	if r.policy.MaxDelay > 0 && d > r.policy.MaxDelay {
		d = r.policy.MaxDelay
	}
	return d
}
