package autocomplete

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/metrics"

	"go.uber.org/zap"
)

const DefaultThreshold = 24 * time.Hour

// Store completes confirmed appointments in one atomic statement.
type Store interface {
	CompleteConfirmedBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type Result struct {
	Completed int64     `json:"completed"`
	Cutoff    time.Time `json:"cutoff"`
}

// Sweeper moves appointments that stayed confirmed longer than the
// threshold to completed.
type Sweeper struct {
	store     Store
	threshold time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewSweeper(store Store, threshold time.Duration, log *zap.Logger) *Sweeper {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		store:     store,
		threshold: threshold,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	now := s.now()
	cutoff := now.Add(-s.threshold)

	n, err := s.store.CompleteConfirmedBefore(ctx, cutoff, now)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("auto-complete appointments: %w", err)
	}

	metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	metrics.AppointmentsAutoCompleted.Add(float64(n))
	if n > 0 {
		s.log.Info("appointments auto-completed", zap.Int64("completed", n), zap.Time("cutoff", cutoff))
	}
	return Result{Completed: n, Cutoff: cutoff}, nil
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// returns immediately.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.log.Info("auto-complete loop disabled")
		return
	}
	s.log.Info("auto-complete loop started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("auto-complete loop stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("auto-complete sweep failed", zap.Error(err))
			}
		}
	}
}
