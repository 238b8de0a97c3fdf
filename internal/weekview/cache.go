package weekview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/fdg312/family-hub/internal/cache"
	"github.com/fdg312/family-hub/internal/telemetry"
)

// DefaultWeekTTL is how long a built week stays cached.
const DefaultWeekTTL = 30 * time.Minute

const buildTimeout = 30 * time.Second

// WeekKey is the cache key of a week: "week:" plus the ISO date of its Monday.
type WeekKey string

// KeyFor returns the key of the week containing t.
func KeyFor(t time.Time) WeekKey {
	return WeekKey("week:" + FormatDate(MondayOf(t)))
}

// Builder builds a week from the system of record.
type Builder interface {
	BuildWeek(ctx context.Context, start time.Time) (*Week, error)
}

// keyState serializes set and invalidate on one key. gen is bumped on every
// invalidation so builds started before it never write. dirty is set when an
// invalidation could not delete the stored value; store hits are ignored until
// a build overwrites it. A state lives while refs > 0 or while it is dirty.
type keyState struct {
	mu    sync.Mutex
	gen   atomic.Uint64
	dirty atomic.Bool
	refs  int // guarded by Cache.statesMu
}

// Cache memoizes built weeks in a cache.Store.
type Cache struct {
	store   cache.Store
	builder Builder
	ttl     time.Duration
	metrics *telemetry.Metrics
	logger  logrus.FieldLogger

	statesMu sync.Mutex
	states   map[WeekKey]*keyState
	group    singleflight.Group
}

func NewCache(store cache.Store, builder Builder, ttl time.Duration, metrics *telemetry.Metrics, logger logrus.FieldLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultWeekTTL
	}
	return &Cache{
		store:   store,
		builder: builder,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
		states:  make(map[WeekKey]*keyState),
	}
}

// acquire returns the state of key, creating it, and holds a reference.
func (c *Cache) acquire(key WeekKey) *keyState {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	st, ok := c.states[key]
	if !ok {
		st = &keyState{}
		c.states[key] = st
	}
	st.refs++
	return st
}

// release drops a reference and forgets the state once nothing uses it.
func (c *Cache) release(key WeekKey, st *keyState) {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	st.refs--
	if st.refs == 0 && !st.dirty.Load() && c.states[key] == st {
		delete(c.states, key)
	}
}

func (c *Cache) isDirty(key WeekKey) bool {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	st, ok := c.states[key]
	return ok && st.dirty.Load()
}

func (c *Cache) trackedKeys() int {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()
	return len(c.states)
}

// GetOrBuild returns the cached week containing start or builds it. Store
// failures count as misses. Concurrent misses on one week share a build.
func (c *Cache) GetOrBuild(ctx context.Context, start time.Time) (*Week, error) {
	monday := MondayOf(start)
	key := KeyFor(monday)
	log := c.logger.WithField("week", string(key))

	raw, err := c.store.Get(ctx, string(key))
	switch {
	case err == nil && c.isDirty(key):
		log.Debug("ignoring cached week left behind by a failed invalidation")
		c.metrics.CacheLookup("miss")
	case err == nil:
		week, decodeErr := decodeWeek(raw)
		if decodeErr == nil {
			c.metrics.CacheLookup("hit")
			return week, nil
		}
		log.WithError(decodeErr).Warn("discarding undecodable cached week")
		c.metrics.CacheLookup("error")
	case errors.Is(err, cache.ErrMiss):
		c.metrics.CacheLookup("miss")
	default:
		log.WithError(err).Warn("week cache read failed, rebuilding")
		c.metrics.CacheLookup("error")
	}

	st := c.acquire(key)
	gen := st.gen.Load()
	flight := fmt.Sprintf("%s#%d", key, gen)

	ch := c.group.DoChan(flight, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()

		week, err := c.builder.BuildWeek(buildCtx, monday)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(week)
		if err != nil {
			return nil, fmt.Errorf("encode week: %w", err)
		}
		c.storeIfCurrent(buildCtx, key, st, gen, encoded)
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		// The build goes on; keep st alive until it has stored its result.
		go func() {
			<-ch
			c.release(key, st)
		}()
		return nil, ctx.Err()
	case res := <-ch:
		c.release(key, st)
		if res.Err != nil {
			return nil, res.Err
		}
		return decodeWeek(res.Val.([]byte))
	}
}

// storeIfCurrent writes the encoded week unless the key was invalidated since
// gen was read. Write failures are logged only.
func (c *Cache) storeIfCurrent(ctx context.Context, key WeekKey, st *keyState, gen uint64, encoded []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.gen.Load() != gen {
		return
	}
	if err := c.store.Set(ctx, string(key), encoded, c.ttl); err != nil {
		c.logger.WithError(err).WithField("week", string(key)).Warn("week cache write failed")
		return
	}
	st.dirty.Store(false)
}

// Invalidate removes the cached week containing start. In-flight builds of
// that week will not repopulate the cache. When the store delete fails the
// error is returned and the stored value is still never served again.
func (c *Cache) Invalidate(ctx context.Context, start time.Time) error {
	key := KeyFor(start)
	st := c.acquire(key)
	defer c.release(key, st)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.gen.Add(1)
	c.metrics.CacheInvalidated()
	if err := c.store.Delete(ctx, string(key)); err != nil {
		st.dirty.Store(true)
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	st.dirty.Store(false)
	return nil
}

// InvalidateDate invalidates the week covering a YYYY-MM-DD date.
func (c *Cache) InvalidateDate(ctx context.Context, date string) error {
	t, err := ParseDate(date)
	if err != nil {
		return err
	}
	return c.Invalidate(ctx, t)
}

func decodeWeek(raw []byte) (*Week, error) {
	var week Week
	if err := json.Unmarshal(raw, &week); err != nil {
		return nil, fmt.Errorf("decode week: %w", err)
	}
	return &week, nil
}
