package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/adapters/repository"
	"github.com/aethernova/habits-api/internal/core/domain"
)

type failingExpirer struct{}

func (failingExpirer) ExpireFreezes(context.Context, time.Time) (int, error) {
	return 0, errors.New("db down")
}

func TestFreezeExpiryWorker_Sweep(t *testing.T) {
	ctx := context.Background()
	habits := repository.NewInMemoryHabitRepository()

	h, err := domain.NewHabit("user-1", "Stretch", "", domain.CategoryHealth)
	require.NoError(t, err)
	require.NoError(t, h.Freeze(1, fixedNow))
	require.NoError(t, habits.Create(ctx, h))

	clock := &domain.FixedClock{At: fixedNow}
	obs := newRecordingObserver()
	w := NewFreezeExpiryWorker(habits, time.Minute, clock, obs, zap.NewNop())

	assert.Zero(t, w.Sweep(ctx), "freeze still running")

	clock.At = fixedNow.Add(48 * time.Hour)
	assert.Equal(t, 1, w.Sweep(ctx))

	got, err := habits.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFrozen)
	assert.Nil(t, got.FrozenUntil)
	assert.Equal(t, domain.DefaultFreezesAvailable-1, got.FreezesAvailable)

	assert.Equal(t, 1, obs.cleared)
	assert.Equal(t, 2, obs.jobs[freezeWorkerName])
}

func TestFreezeExpiryWorker_Failure(t *testing.T) {
	obs := newRecordingObserver()
	w := NewFreezeExpiryWorker(failingExpirer{}, time.Minute, nil, obs, zap.NewNop())

	assert.Zero(t, w.Sweep(context.Background()))
	assert.Equal(t, 1, obs.failures)
}
