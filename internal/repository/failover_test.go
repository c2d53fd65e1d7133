package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo errors on every call until healthy is flipped.
type failingRepo struct {
	inner   *MemoryStateRepository
	healthy bool
	calls   int
}

func (f *failingRepo) GetSession(ctx context.Context, clientID string) (*models.WizardSession, error) {
	f.calls++
	if !f.healthy {
		return nil, errors.New("connection refused")
	}
	return f.inner.GetSession(ctx, clientID)
}

func (f *failingRepo) SetSession(ctx context.Context, session *models.WizardSession) error {
	f.calls++
	if !f.healthy {
		return errors.New("connection refused")
	}
	return f.inner.SetSession(ctx, session)
}

func (f *failingRepo) ClearSession(ctx context.Context, clientID string) error {
	f.calls++
	if !f.healthy {
		return errors.New("connection refused")
	}
	return f.inner.ClearSession(ctx, clientID)
}

func (f *failingRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.calls++
	if !f.healthy {
		return false, errors.New("connection refused")
	}
	return f.inner.CheckRateLimit(ctx, key, limit, window)
}

func setupFailover(healthy bool) (*failingRepo, *MemoryStateRepository, *FailoverStateRepository) {
	primary := &failingRepo{inner: NewMemoryStateRepository(time.Minute), healthy: healthy}
	fallback := NewMemoryStateRepository(time.Minute)
	logger := zerolog.Nop()
	return primary, fallback, NewFailoverStateRepository(primary, fallback, &logger)
}

func TestFailover_UsesPrimaryWhenHealthy(t *testing.T) {
	primary, fallback, repo := setupFailover(true)
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, &models.WizardSession{ClientID: "client-1"}))

	got, err := primary.inner.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.NotNil(t, got, "session written to primary")

	got, err = fallback.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, got, "fallback untouched while primary is up")
}

func TestFailover_FallsBackOnError(t *testing.T) {
	_, fallback, repo := setupFailover(false)
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, &models.WizardSession{ClientID: "client-1"}))

	got, err := fallback.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.NotNil(t, got, "session lands in the fallback when primary fails")

	got, err = repo.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.NotNil(t, got, "reads keep working through the fallback")
}

func TestFailover_StopsHammeringDownedPrimary(t *testing.T) {
	primary, _, repo := setupFailover(false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.GetSession(ctx, "client-1")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, primary.calls, "primary is only retried once per window")
}

func TestFailover_RecoversAfterRetryWindow(t *testing.T) {
	primary, _, repo := setupFailover(false)
	ctx := context.Background()

	_, err := repo.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, repo.isDown.Load())

	primary.healthy = true
	// Rewind the last failure an hour back so the retry window has passed.
	repo.lastCheck.Store(time.Now().Add(-time.Hour).UnixNano())

	_, err = repo.GetSession(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, repo.isDown.Load(), "primary marked healthy again")
}

func TestFailover_RateLimit(t *testing.T) {
	_, _, repo := setupFailover(false)
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, "client-1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(ctx, "client-1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fallback enforces the limit while primary is down")
}
