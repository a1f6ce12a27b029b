package scheduler

import (
	"context"
	"time"

	"github.com/oakline/planboard/internal/logger"
)

// Refresher re-synchronizes the loaded scope with the remote store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// FacetRefresher recomputes facet projections after a reload.
type FacetRefresher interface {
	Refresh()
}

// RefreshScheduler periodically re-loads the current scope so a long-lived
// calendar view converges with what the remote store holds. A tick with no
// scope loaded yet is a no-op; a failed refresh leaves whatever partial state
// the coordinator kept and is retried on the next tick.
type RefreshScheduler struct {
	coordinator Refresher
	facets      FacetRefresher
	poll        time.Duration
}

func NewRefreshScheduler(coordinator Refresher, facets FacetRefresher, poll time.Duration) *RefreshScheduler {
	return &RefreshScheduler{coordinator: coordinator, facets: facets, poll: poll}
}

// Start runs the refresh loop in a goroutine until ctx is canceled.
func (s *RefreshScheduler) Start(ctx context.Context) {
	logger.WithComponent("refresh").Debugf("starting scope refresh scheduler with interval: %v", s.poll)
	ticker := time.NewTicker(s.poll)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("refresh").Info("refresh scheduler stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *RefreshScheduler) tick(ctx context.Context) {
	logger.WithComponent("refresh").Tracef("refresh tick")
	if err := s.coordinator.Refresh(ctx); err != nil {
		logger.WithComponent("refresh").Errorf("scope refresh failed: %v", err)
		return
	}
	s.facets.Refresh()
}
