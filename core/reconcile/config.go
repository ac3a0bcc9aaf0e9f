package reconcile

import "time"

// Config holds configuration for reconciliation passes.
type Config struct {
	// Locales are the target locales (Crowdin language ids) to download.
	Locales []string `mapstructure:"locales" default:""`
	// Concurrency bounds how many files are reconciled at once.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// MaxAttempts caps attempts per remote call, including the first.
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
	// BaseDelayMillis is the first backoff delay.
	BaseDelayMillis int `mapstructure:"base_delay_millis" default:"500"`
	// MaxDelayMillis caps a single backoff delay.
	MaxDelayMillis int `mapstructure:"max_delay_millis" default:"30000"`
	// Jitter is the random fraction added to each delay (0 to 1).
	Jitter float64 `mapstructure:"jitter" default:"0.2"`
	// StateCacheSeconds reuses a fetched project state for this long. Zero disables caching.
	StateCacheSeconds int `mapstructure:"state_cache_seconds" default:"0"`
}

// Policy returns the retry policy described by c.
func (c Config) Policy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   time.Duration(c.BaseDelayMillis) * time.Millisecond,
		MaxDelay:    time.Duration(c.MaxDelayMillis) * time.Millisecond,
		Jitter:      c.Jitter,
	}
}

// Options returns engine options described by c.
func (c Config) Options() Options {
	return Options{
		Locales:     append([]string(nil), c.Locales...),
		Concurrency: c.Concurrency,
		Retry:       c.Policy(),
	}
}

// StateCacheTTL returns the project state cache lifetime.
func (c Config) StateCacheTTL() time.Duration {
	return time.Duration(c.StateCacheSeconds) * time.Second
}
