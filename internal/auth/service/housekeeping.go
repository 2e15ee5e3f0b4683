package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/store"
)

// HousekeepingService periodically purges revocation records whose tokens
// have expired, so the revocation set does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Clock    func() time.Time
}

// NewHousekeepingService creates a housekeeping service. If interval is 0
// or negative, it defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Clock:    time.Now,
	}
}

// Run cleans up once immediately and then every Interval until ctx is
// cancelled. It always returns nil so it can sit in an errgroup.
func (s *HousekeepingService) Run(ctx context.Context) error {
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
	defer s.Logger.Info("housekeeping service stopped")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(ctx)
	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Cleanup performs one purge pass and returns the number of records removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Store.Revocations().DeleteExpired(ctx, s.Clock())
	if err != nil {
		if ctx.Err() == nil {
			s.Logger.Error("failed to delete expired revocations", "error", err)
		}
		return 0
	}
	s.Logger.Debug("housekeeping cleanup completed", "revocations_deleted", n)
	return n
}
