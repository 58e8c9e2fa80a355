package order

import (
	"context"
	"log"
	"time"
)

// Sweeper cancels online orders whose payment never completed within a grace period.
type Sweeper struct {
	repo     Repository
	after    time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(repo Repository, after, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		repo:     repo,
		after:    after,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[sweeper] started after=%s interval=%s", s.after, s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sweeper] stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("[sweeper] sweep failed: %v", err)
			}
		}
	}
}

// Sweep cancels stale unpaid orders once and returns their ids.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	now := s.now().UTC()
	ids, err := s.repo.CancelStalePayments(ctx, now.Add(-s.after), now)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		log.Printf("[sweeper] cancelled %d unpaid orders: %v", len(ids), ids)
	}
	return ids, nil
}
