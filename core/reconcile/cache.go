package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedRemote wraps a Remote and caches FetchProjectState for a TTL.
// Concurrent fetches of an expired entry are coalesced into one call, and any
// upload invalidates the cached state.
type CachedRemote struct {
	Remote

	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	state ProjectState
	built time.Time
	sf    singleflight.Group
}

// NewCachedRemote returns remote with a state cache. A zero ttl disables caching
// but still coalesces concurrent fetches.
func NewCachedRemote(remote Remote, ttl time.Duration) *CachedRemote {
	return &CachedRemote{Remote: remote, ttl: ttl, now: time.Now}
}

func (c *CachedRemote) fresh() (ProjectState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil || c.ttl == 0 || c.now().Sub(c.built) > c.ttl {
		return nil, false
	}
	return c.state, true
}

// FetchProjectState returns the cached state while it is fresh.
func (c *CachedRemote) FetchProjectState(ctx context.Context) (ProjectState, error) {
	if state, ok := c.fresh(); ok {
		return state, nil
	}

	v, err, _ := c.sf.Do("state", func() (any, error) {
		// Double-check after acquiring the flight
		if state, ok := c.fresh(); ok {
			return state, nil
		}
		state, err := c.Remote.FetchProjectState(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.state = state
		c.built = c.now()
		c.mu.Unlock()
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ProjectState), nil
}

// UploadSourceFile forwards to the wrapped remote and drops the cached state.
func (c *CachedRemote) UploadSourceFile(ctx context.Context, path string, content []byte) (string, error) {
	rev, err := c.Remote.UploadSourceFile(ctx, path, content)
	c.Invalidate()
	return rev, err
}

// Invalidate drops the cached state.
func (c *CachedRemote) Invalidate() {
	c.mu.Lock()
	c.state = nil
	c.mu.Unlock()
}
