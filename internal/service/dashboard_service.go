package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/metrics"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// snapshotTimeout bounds a shared read, which outlives any single poller.
const snapshotTimeout = 5 * time.Second

// FinalScheduler creates the final tie once the league is complete.
type FinalScheduler interface {
	EnsureFinal(ctx context.Context) (*league.FinalTie, error)
}

// DashboardService serves the polled read models. Concurrent identical polls
// share one snapshot read.
type DashboardService struct {
	store   *store.LeagueStore
	finals  FinalScheduler
	clock   clockwork.Clock
	metrics metrics.Metrics
	group   singleflight.Group
}

// NewDashboardService builds the read side. When finals is set, a poll that
// finds the league complete without a final tie schedules it.
func NewDashboardService(store *store.LeagueStore, finals FinalScheduler, clock clockwork.Clock, m metrics.Metrics) *DashboardService {
	return &DashboardService{store: store, finals: finals, clock: clock, metrics: m}
}

func (s *DashboardService) Dashboard(ctx context.Context) (*league.Dashboard, error) {
	v, err := s.do(ctx, "dashboard", func(snap *league.Snapshot) any {
		d := league.BuildDashboard(snap, s.clock.Now())
		return &d
	})
	if err != nil {
		return nil, err
	}
	return v.(*league.Dashboard), nil
}

func (s *DashboardService) Standings(ctx context.Context) (*league.Standings, error) {
	v, err := s.do(ctx, "standings", func(snap *league.Snapshot) any {
		st := snap.Standings()
		return &st
	})
	if err != nil {
		return nil, err
	}
	return v.(*league.Standings), nil
}

// do runs build over a fresh snapshot. A failed read returns an error and
// leaves nothing behind, so callers simply poll again. The read is detached
// from ctx because every poll collapsed onto it shares the result.
func (s *DashboardService) do(ctx context.Context, key string, build func(*league.Snapshot) any) (any, error) {
	start := s.clock.Now()
	v, err, shared := s.group.Do(key, func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
		defer cancel()

		snap, err := s.snapshot(readCtx)
		if err != nil {
			return nil, err
		}
		return build(snap), nil
	})
	s.metrics.ObserveDashboardBuild(s.clock.Since(start).Seconds(), shared)
	return v, err
}

// snapshot reads the league, first scheduling the final if the league is
// complete and it is still missing.
func (s *DashboardService) snapshot(ctx context.Context) (*league.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("league snapshot", err)
	}
	if s.finals == nil || snap.Final != nil || !snap.Standings().LeagueComplete {
		return snap, nil
	}

	final, err := s.finals.EnsureFinal(ctx)
	if err != nil {
		slog.Warn("failed to schedule final tie from dashboard", "error", err)
		return snap, nil
	}
	if final == nil {
		return snap, nil
	}

	snap, err = s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("league snapshot", err)
	}
	return snap, nil
}
