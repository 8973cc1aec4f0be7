package usage

import (
	"context"
	"time"
)

// Service records pipeline runs and summarises them.
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record stores one run. Runs without an outcome are rejected with ErrBadRun.
func (s *Service) Record(ctx context.Context, run Run) error {
	if run.Outcome == "" {
		return ErrBadRun
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	return s.store.Insert(ctx, run)
}

// Summary counts runs started within the last window.
func (s *Service) Summary(ctx context.Context, window time.Duration) (Summary, error) {
	since := s.now().Add(-window).UTC()
	counts, err := s.store.CountByOutcome(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Since: since, ByOutcome: counts}
	if sum.ByOutcome == nil {
		sum.ByOutcome = []OutcomeCount{}
	}
	for _, c := range counts {
		sum.Total += c.Count
	}
	return sum, nil
}
