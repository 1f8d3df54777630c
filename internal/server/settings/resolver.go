// Package settings resolves configuration values for the server.
//
// A value is looked up in order: the in-process cache, the persisted
// site_settings store, then the process environment variable named exactly
// like the key. Store failures are logged and treated as a miss so a store
// outage degrades to the environment instead of failing the caller.
package settings

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/dmitrijs2005/sitedir/internal/logging"
	"github.com/dmitrijs2005/sitedir/internal/server/metrics"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
)

// DefaultCacheTTL is how long a cached value is trusted.
const DefaultCacheTTL = 60 * time.Second

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// Store is the read side of the persisted settings repository.
type Store interface {
	Get(ctx context.Context, category, key string) (*models.Setting, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Setting, error)
}

type cacheKey struct {
	category string
	key      string
}

type cacheEntry struct {
	value    string
	cachedAt time.Time
}

// step is one source in the resolution order.
type step struct {
	source string
	lookup func(ctx context.Context, category, key string) (string, bool)
}

// Resolver is safe for concurrent use. Two concurrent misses for the same key
// may both query the store; both write the same value.
type Resolver struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	logger  logging.Logger
	metrics *metrics.Metrics

	steps []step

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

type Option func(*Resolver)

func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver builds a Resolver over store. A nil store resolves from the
// environment only.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		ttl:    DefaultCacheTTL,
		now:    time.Now,
		logger: logging.Discard(),
		cache:  make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.steps = append(r.steps, step{metrics.SourceCache, r.fromCache})
	if store != nil {
		r.steps = append(r.steps, step{metrics.SourceStore, r.fromStore})
	}
	r.steps = append(r.steps, step{metrics.SourceEnv, r.fromEnv})

	return r
}

// Get returns the value for (category, key) and whether one was found.
func (r *Resolver) Get(ctx context.Context, category, key string) (string, bool) {
	for _, s := range r.steps {
		if v, ok := s.lookup(ctx, category, key); ok {
			r.metrics.SettingsLookup(s.source)
			return v, true
		}
	}
	r.metrics.SettingsLookup(metrics.SourceNone)
	return "", false
}

// GetAll returns every stored value under category in one store query. It
// neither reads nor fills the cache and returns an empty map when the store
// fails.
func (r *Resolver) GetAll(ctx context.Context, category string) map[string]string {
	result := make(map[string]string)
	if r.store == nil {
		return result
	}

	list, err := r.store.ListByCategory(ctx, category)
	if err != nil {
		r.metrics.SettingsStoreError()
		r.logger.Warn(ctx, "settings store list failed", "category", category, "error", err)
		return result
	}
	for _, s := range list {
		result[s.Key] = s.Value
	}
	return result
}

// Invalidate drops every cached value so the next Get goes to the store.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]cacheEntry)
}

// MarkFresh keeps the cached values and restarts their TTL window at now.
func (r *Resolver) MarkFresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, e := range r.cache {
		e.cachedAt = now
		r.cache[k] = e
	}
}

func (r *Resolver) fromCache(_ context.Context, category, key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.cache[cacheKey{category, key}]
	if !ok || r.now().Sub(e.cachedAt) >= r.ttl {
		return "", false
	}
	return e.value, true
}

// fetch reads one entry from the store. A missing entry is not an error.
func (r *Resolver) fetch(ctx context.Context, category, key string) (string, error) {
	s, err := r.store.Get(ctx, category, key)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

func (r *Resolver) fromStore(ctx context.Context, category, key string) (string, bool) {
	v, err := r.fetch(ctx, category, key)
	if err != nil {
		r.metrics.SettingsStoreError()
		r.logger.Warn(ctx, "settings store read failed, falling back to environment",
			"category", category, "key", key, "error", err)
		return "", false
	}
	if v == "" {
		return "", false
	}

	r.mu.Lock()
	r.cache[cacheKey{category, key}] = cacheEntry{value: v, cachedAt: r.now()}
	r.mu.Unlock()

	return v, true
}

func (r *Resolver) fromEnv(_ context.Context, _, key string) (string, bool) {
	v, ok := lookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
