package recap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/pivot"
	"github.com/Veraticus/visit-recap/internal/service"
)

// Result is a built recap together with where its data came from.
type Result struct {
	FetchedAt time.Time
	Table     *model.Table
	FromCache bool
}

// Service serves recap tables for one session. It owns the cache of the
// last fetch so a display refresh and a later export share one round trip.
type Service struct {
	fetcher      service.LineFetcher
	builder      *pivot.Builder
	cache        *snapshotCache
	logger       *slog.Logger
	now          func() time.Time
	group        singleflight.Group
	fetchTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// DefaultFetchTimeout bounds one shared backend fetch.
const DefaultFetchTimeout = 2 * time.Minute

// WithFetchTimeout bounds each shared fetch. Callers still give up on their
// own context.
func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a session service.
func NewService(fetcher service.LineFetcher, builder *pivot.Builder, ttl time.Duration, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		fetcher:      fetcher,
		builder:      builder,
		logger:       logger,
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newSnapshotCache(ttl, s.now)
	return s
}

// Snapshot returns the cached snapshot, fetching a fresh one when refresh is
// set or the cache is empty or stale. Concurrent misses share one fetch.
func (s *Service) Snapshot(ctx context.Context, refresh bool) (*Snapshot, bool, error) {
	if !refresh {
		if snap, ok := s.cache.get(); ok {
			s.logger.Debug("using cached snapshot", "fetched_at", snap.FetchedAt)
			return snap, true, nil
		}
	}

	// The fetch is shared by every caller that misses while it runs, so it
	// must not die with the first caller's context.
	ch := s.group.DoChan("snapshot", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		start := s.now()
		snap, err := Fetch(fetchCtx, s.fetcher, start)
		if err != nil {
			return nil, err
		}
		s.cache.set(snap)
		s.logger.Info("fetched visit records",
			"lines", len(snap.Lines),
			"headers", len(snap.Headers),
			"duration", s.now().Sub(start))
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("failed to fetch recap data: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, false, fmt.Errorf("failed to fetch recap data: %w", res.Err)
		}
		return res.Val.(*Snapshot), false, nil
	}
}

// Table builds the recap from the session snapshot.
func (s *Service) Table(ctx context.Context, refresh bool) (*Result, error) {
	snap, cached, err := s.Snapshot(ctx, refresh)
	if err != nil {
		return nil, err
	}

	table, err := s.builder.Build(snap.Lines, snap.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to build recap: %w", err)
	}

	return &Result{
		Table:     table,
		FetchedAt: snap.FetchedAt,
		FromCache: cached,
	}, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate() {
	s.cache.clear()
}
