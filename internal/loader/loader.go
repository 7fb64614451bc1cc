// Package loader implements the on-demand lesson artifact loader: a TTL cache
// fronted by a resolver, with priority-tiered group preloading in bounded
// concurrent batches and best-effort adjacency prefetch.
//
// All per-id failures are absorbed: a caller of GetOrLoad always receives an
// artifact, substituting the injected placeholder when resolution or loading
// fails. Callers that need to detect degraded content inspect the artifact
// itself rather than an error.
package loader

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"lessonforge/internal/cache"
	"lessonforge/internal/catalog"
	"lessonforge/internal/registry"
	"lessonforge/internal/schedule"
)

// LoadFunc produces an artifact for a resolved descriptor. It may fail; the
// service wraps every failure with placeholder substitution.
type LoadFunc func(ctx context.Context, d registry.Descriptor) (any, error)

// PlaceholderFunc supplies the artifact substituted on any failure path.
type PlaceholderFunc func(id int) any

// Config tunes the service. Zero values are rejected by New; use
// DefaultConfig as the starting point.
type Config struct {
	TTL           time.Duration // cache entry lifetime
	SweepInterval time.Duration // period of the background eviction pass
	BatchSize     int           // max loads in flight during a preload
	BatchPause    time.Duration // pause between preload batches
	MediumDelay   time.Duration // preload deferral for medium priority groups
	LowDelay      time.Duration // preload deferral for low priority groups
	MaxID         int           // upper bound of the lesson id space

	// DedupeInFlight shares one load among concurrent callers of the same id.
	// Off by default: the historical behavior lets concurrent callers race and
	// load twice.
	DedupeInFlight bool

	Logger *zap.Logger
}

// DefaultConfig returns the deployment tuning.
func DefaultConfig() Config {
	return Config{
		TTL:           10 * time.Minute,
		SweepInterval: 5 * time.Minute,
		BatchSize:     5,
		BatchPause:    100 * time.Millisecond,
		MediumDelay:   2 * time.Second,
		LowDelay:      5 * time.Second,
		MaxID:         120,
	}
}

func (c Config) validate() error {
	switch {
	case c.TTL <= 0:
		return errors.New("loader: TTL must be positive")
	case c.SweepInterval <= 0:
		return errors.New("loader: sweep interval must be positive")
	case c.BatchSize <= 0:
		return errors.New("loader: batch size must be positive")
	case c.MaxID <= 0:
		return errors.New("loader: max id must be positive")
	case c.BatchPause < 0 || c.MediumDelay < 0 || c.LowDelay < 0:
		return errors.New("loader: delays must not be negative")
	}
	return nil
}

// Service owns the cache, the preloaded-group set, and the background tasks
// that populate them. Construct with New; one instance per deployment (or per
// test) so independent instances never share state.
type Service struct {
	cfg    Config
	id     string // instance id for log correlation
	logger *zap.Logger

	cache   *cache.Cache
	sweeper *cache.Sweeper

	load        LoadFunc
	placeholder PlaceholderFunc
	flight      singleflight.Group

	wg sync.WaitGroup // in-flight prefetch goroutines

	mu        sync.Mutex
	catalog   *catalog.Catalog
	resolver  *registry.Registry
	preloaded map[string]struct{}
	pending   []*schedule.Handle
	closed    bool
}

// New creates a started service: the eviction sweeper is running on return.
func New(cat *catalog.Catalog, res *registry.Registry, load LoadFunc, placeholder PlaceholderFunc, cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cat == nil || res == nil {
		return nil, errors.New("loader: catalog and registry are required")
	}
	if load == nil || placeholder == nil {
		return nil, errors.New("loader: load and placeholder functions are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	instanceID := uuid.NewString()[:8]
	logger = logger.With(zap.String("loader", instanceID))

	s := &Service{
		cfg:         cfg,
		id:          instanceID,
		logger:      logger,
		cache:       cache.New(cfg.TTL),
		load:        load,
		placeholder: placeholder,
		catalog:     cat,
		resolver:    res,
		preloaded:   make(map[string]struct{}),
	}
	s.sweeper = cache.NewSweeper(s.cache, cfg.SweepInterval, logger)
	s.sweeper.Start()
	return s, nil
}

// GetOrLoad returns the artifact for id: the cached copy when fresh, else a
// freshly resolved and loaded one (placeholder on any failure). The result is
// inserted into the cache and the immediate neighbors are prefetched in the
// background. Never returns an error to the caller.
func (s *Service) GetOrLoad(ctx context.Context, id int) any {
	if artifact, ok := s.cache.Get(id); ok {
		s.prefetchNeighbors(id)
		return artifact
	}

	artifact := s.loadOne(ctx, id)
	s.prefetchNeighbors(id)
	return artifact
}

// PreloadGroup populates the cache for every id in the named group's range.
// High priority groups are loaded before PreloadGroup returns; medium and low
// priority groups return immediately and run after their tier's delay. A group
// already marked preloaded is a no-op; the mark is set only after a full pass
// completes and is cleared only by Reset.
func (s *Service) PreloadGroup(ctx context.Context, name string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	group, ok := s.catalog.Lookup(name)
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("preload requested for unknown group", zap.String("group", name))
		return
	}
	if _, done := s.preloaded[group.Name]; done {
		s.mu.Unlock()
		s.logger.Debug("group already preloaded", zap.String("group", group.Name))
		return
	}
	s.mu.Unlock()

	if group.Priority == catalog.PriorityHigh {
		s.preloadRange(ctx, group)
		return
	}

	delay := s.cfg.MediumDelay
	if group.Priority == catalog.PriorityLow {
		delay = s.cfg.LowDelay
	}
	s.logger.Debug("deferring group preload",
		zap.String("group", group.Name),
		zap.Stringer("priority", group.Priority),
		zap.Duration("delay", delay))

	// Fire-and-forget: the handle is retained only so Close can cancel it.
	// Reset deliberately leaves armed timers alone.
	handle := schedule.After(delay, func() {
		s.preloadRange(context.Background(), group)
	})

	s.mu.Lock()
	s.pending = append(s.pending, handle)
	s.mu.Unlock()
}

// preloadRange loads every id in the group's range in fixed-size batches.
// Each batch settles fully (success or failure per id) before the inter-batch
// pause and the next batch; individual failures never abort the pass.
func (s *Service) preloadRange(ctx context.Context, group catalog.Group) {
	start := time.Now()

	for lo := group.Lo; lo <= group.Hi; lo += s.cfg.BatchSize {
		hi := lo + s.cfg.BatchSize - 1
		if hi > group.Hi {
			hi = group.Hi
		}

		// Settle-all join: workers absorb their own failures and return nil,
		// so the group waits for every member and never short-circuits.
		var g errgroup.Group
		for id := lo; id <= hi; id++ {
			g.Go(func() error {
				s.loadOne(ctx, id)
				return nil
			})
		}
		_ = g.Wait()

		if hi < group.Hi {
			select {
			case <-time.After(s.cfg.BatchPause):
			case <-ctx.Done():
				s.logger.Warn("group preload interrupted",
					zap.String("group", group.Name),
					zap.Error(ctx.Err()))
				return
			}
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.preloaded[group.Name] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("group preloaded",
		zap.String("group", group.Name),
		zap.Int("lessons", group.Size()),
		zap.Duration("took", time.Since(start)))
}

// loadOne resolves and loads a single id, caching the result. Any failure is
// logged and replaced by the placeholder, which is cached like a real artifact
// so the id is not hammered until its entry goes stale.
func (s *Service) loadOne(ctx context.Context, id int) any {
	if s.cfg.DedupeInFlight {
		artifact, _, _ := s.flight.Do(strconv.Itoa(id), func() (any, error) {
			return s.fetch(ctx, id), nil
		})
		return artifact
	}
	return s.fetch(ctx, id)
}

func (s *Service) fetch(ctx context.Context, id int) any {
	s.mu.Lock()
	resolver := s.resolver
	s.mu.Unlock()

	desc, err := resolver.Resolve(id)
	if err != nil {
		s.logger.Warn("no descriptor for lesson, using placeholder",
			zap.Int("lesson", id))
		artifact := s.placeholder(id)
		s.cache.Put(id, artifact)
		return artifact
	}

	artifact, err := s.load(ctx, desc)
	if err != nil {
		s.logger.Warn("lesson load failed, using placeholder",
			zap.Int("lesson", id),
			zap.String("name", desc.Name),
			zap.Error(err))
		artifact = s.placeholder(id)
	}
	s.cache.Put(id, artifact)
	return artifact
}

// prefetchNeighbors fires unawaited loads for id-1 and id+1, clamped to the
// valid bounds and skipping fresh cache entries. Pure latency hiding; results
// and failures are both ignored.
func (s *Service) prefetchNeighbors(id int) {
	for _, n := range [2]int{id - 1, id + 1} {
		if n < 1 || n > s.cfg.MaxID || s.cache.Contains(n) {
			continue
		}
		s.logger.Debug("prefetching adjacent lesson", zap.Int("lesson", n))
		s.wg.Add(1)
		go func(n int) {
			defer s.wg.Done()
			s.loadOne(context.Background(), n)
		}(n)
	}
}

// Reset clears the cache and the preloaded-group set. Armed preload timers
// are not canceled and will still fire; use Close for a full teardown.
func (s *Service) Reset() {
	s.cache.Clear()

	s.mu.Lock()
	s.preloaded = make(map[string]struct{})
	s.mu.Unlock()

	s.logger.Info("loader state reset")
}

// Close stops the sweeper, cancels pending deferred preloads, and waits for
// any that already fired to finish. Idempotent.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, h := range pending {
		if !h.Cancel() {
			<-h.Done()
		}
	}
	s.wg.Wait()
	s.sweeper.Stop()
	s.logger.Info("loader closed")
}

// Swap atomically replaces the catalog and resolver, e.g. after a manifest
// reload. The cache and preloaded set are untouched: a reload is not a reset.
func (s *Service) Swap(cat *catalog.Catalog, res *registry.Registry) {
	if cat == nil || res == nil {
		return
	}
	s.mu.Lock()
	s.catalog = cat
	s.resolver = res
	s.mu.Unlock()
	s.logger.Info("catalog and registry swapped")
}

// GroupOf exposes the catalog lookup for callers that only hold the service.
func (s *Service) GroupOf(id int) catalog.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.GroupOf(id)
}

// Groups returns the current catalog's group table.
func (s *Service) Groups() []catalog.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Groups()
}

// Preloaded reports whether the named group has completed a preload pass.
func (s *Service) Preloaded(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.preloaded[name]
	return ok
}

// Stats returns a read-only snapshot of the loader's observable state.
func (s *Service) Stats() Stats {
	hits, misses := s.cache.Counters()

	s.mu.Lock()
	groups := make([]string, 0, len(s.preloaded))
	for name := range s.preloaded {
		groups = append(groups, name)
	}
	s.mu.Unlock()
	sort.Strings(groups)

	return Stats{
		CacheSize:       s.cache.Len(),
		PreloadedGroups: groups,
		Hits:            hits,
		Misses:          misses,
	}
}
