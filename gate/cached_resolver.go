package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedResolver keeps resolved profiles for ttl so that authorization does
// not hit the database on every request. Concurrent misses for the same
// subject share one lookup.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[U]cacheEntry
	// epoch advances on every invalidation; lookups started in an older
	// epoch return their result but do not cache it.
	epoch uint64
	group singleflight.Group
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[U]cacheEntry),
	}
}

func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	r.mu.RLock()
	entry, ok := r.cache[user]
	epoch := r.epoch
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.profile, nil
	}

	// The shared lookup ignores any one caller's cancellation; callers that
	// give up stop waiting without failing the others.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(fmt.Sprintf("%v@%d", user, epoch), func() (any, error) {
		profile, err := r.inner.Resolve(shared, user)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.epoch == epoch {
			r.cache[user] = cacheEntry{profile: profile, expiresAt: r.now().Add(r.ttl)}
		}
		r.mu.Unlock()
		return profile, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		profile, _ := res.Val.(Profile)
		return profile, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops one subject, e.g. after its profile assignment changed.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.cache, user)
	r.epoch++
	r.mu.Unlock()
}

// InvalidateAll drops everything, e.g. after a profile's permissions changed.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[U]cacheEntry)
	r.epoch++
	r.mu.Unlock()
}
