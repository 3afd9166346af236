package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// Sweeper drives the time-triggered transitions: fine accrual on overdue
// loans and reservation expiry. Both sweeps are idempotent, so the interval
// is a freshness knob rather than a correctness one.
type Sweeper struct {
	Fines        *service.FineService
	Reservations *service.ReservationService
	Interval     time.Duration
}

func (s *Sweeper) Start(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		logger := utils.GetLogger()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("sweeper stopped")
				return
			case <-ticker.C:
				now := time.Now()
				if _, err := s.Fines.RunFineSweep(ctx, now); err != nil {
					logger.Error("fine sweep failed", zap.Error(err))
				}
				if _, err := s.Reservations.RunExpirySweep(ctx, now); err != nil {
					logger.Error("reservation expiry sweep failed", zap.Error(err))
				}
				if _, err := s.Fines.RunDueReminders(ctx, now); err != nil {
					logger.Error("due reminder pass failed", zap.Error(err))
				}
			}
		}
	}()
}
