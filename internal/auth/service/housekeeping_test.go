package service

import (
	"context"
	"testing"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingDeletesExpiredChallenges(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	stale := env.register(t, "stale@x.com", domain.RoleOwner)
	live := env.register(t, "live@x.com", domain.RoleOwner)

	_, err := env.mfa.CreateChallenge(testContext(), stale.ID)
	require.NoError(t, err)
	env.clock.Advance(DefaultMFACodeTTL + time.Minute)
	_, err = env.mfa.CreateChallenge(testContext(), live.ID)
	require.NoError(t, err)

	hk := NewHousekeepingService(env.store.MFAChallenges(), slogx.Discard(), time.Hour)
	hk.Now = env.clock.Now

	require.EqualValues(t, 1, hk.Cleanup(ctx))

	_, err = env.store.MFAChallenges().Get(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.MFAChallenges().Get(ctx, live.ID)
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	hk := NewHousekeepingService(env.store.MFAChallenges(), slogx.Discard(), 0)
	require.Equal(t, 10*time.Minute, hk.Interval)

	hk.Start()
	hk.Stop()
}
