package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically removes elapsed entries so the store does not grow
// with every identity ever seen.
type Sweeper struct {
	cron    *cron.Cron
	limiter *Limiter
	log     *zap.Logger
}

// NewSweeper schedules a sweep of limiter's store every interval.
func NewSweeper(limiter *Limiter, interval time.Duration, log *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		limiter: limiter,
		log:     log,
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.run); err != nil {
		return nil, fmt.Errorf("schedule rate limit sweep: %w", err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.limiter.Sweep(ctx)
	if err != nil {
		s.log.Warn("Rate limit sweep failed", zap.Int("removed", removed), zap.Error(err))
		return
	}
	s.log.Debug("Rate limit sweep finished", zap.Int("removed", removed))
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running sweep to finish.
func (s *Sweeper) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
