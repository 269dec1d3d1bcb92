package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
)

// HousekeepingService periodically deletes expired MFA challenges so
// abandoned logins do not pile up.
type HousekeepingService struct {
	Challenges store.MFAChallenges
	Logger     *slog.Logger
	Interval   time.Duration
	Now        func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a worker. A non-positive interval defaults
// to 10 minutes.
func NewHousekeepingService(challenges store.MFAChallenges, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Challenges: challenges,
		Logger:     logger,
		Interval:   interval,
		Now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass and returns the number of challenges removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Challenges.DeleteExpired(ctx, s.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired mfa challenges", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping cleanup completed", "mfa_challenges_deleted", n)
	return n
}
