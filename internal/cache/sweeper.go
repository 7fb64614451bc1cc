package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically evicts stale entries from a Cache. It runs in its own
// goroutine; a stale entry is guaranteed to be physically removed within one
// sweep interval of going stale.
type Sweeper struct {
	cache    *Cache
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a sweeper for cache with the given period. A nil logger
// is replaced with a no-op logger.
func NewSweeper(cache *Cache, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the periodic sweep. Non-blocking; calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts the sweep loop and waits for it to exit. Safe to call more than
// once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Sweeper) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce()
		case <-stopCh:
			return
		}
	}
}

// sweepOnce runs a single sweep pass. A sweep must never take the loop down:
// any panic is logged and the next scheduled sweep still runs.
func (s *Sweeper) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep pass failed", zap.Any("panic", r))
		}
	}()

	if removed := s.cache.Sweep(); removed > 0 {
		s.logger.Debug("swept stale cache entries",
			zap.Int("removed", removed),
			zap.Int("remaining", s.cache.Len()))
	}
}
