package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/adapters/repository"
	"github.com/aethernova/habits-api/internal/core/domain"
)

type recordingObserver struct {
	mu        sync.Mutex
	jobs      map[string]int
	failures  int
	cleared   int
	reminders int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{jobs: map[string]int{}}
}

func (o *recordingObserver) JobDone(worker string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs[worker]++
	if err != nil {
		o.failures++
	}
}

func (o *recordingObserver) FreezesCleared(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleared += n
}

func (o *recordingObserver) ReminderDispatched() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reminders++
}

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func seedHabit(t *testing.T, habits *repository.InMemoryHabitRepository, completions *repository.InMemoryCompletionRepository, daysAgo ...int) *domain.Habit {
	t.Helper()
	ctx := context.Background()

	h, err := domain.NewHabit("user-1", "Run", "", domain.CategoryFitness)
	require.NoError(t, err)
	require.NoError(t, habits.Create(ctx, h))

	today := domain.DateOf(fixedNow)
	for _, n := range daysAgo {
		c, err := domain.NewCompletion(h.ID, "user-1", today.AddDays(-n), "")
		require.NoError(t, err)
		require.NoError(t, completions.Create(ctx, c))
	}
	return h
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	tests := []struct {
		name        string
		daysAgo     []int
		wantCurrent int
		wantLongest int
	}{
		{"no completions", nil, 0, 0},
		{"done today", []int{0}, 1, 1},
		{"yesterday keeps the streak", []int{1, 2}, 2, 2},
		{"two days ago breaks it", []int{2}, 0, 1},
		{"longest in the past", []int{0, 10, 11, 12}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habits := repository.NewInMemoryHabitRepository()
			completions := repository.NewInMemoryCompletionRepository()
			obs := newRecordingObserver()
			w := NewStreakWorker(habits, completions, domain.FixedClock{At: fixedNow}, obs, zap.NewNop())

			h := seedHabit(t, habits, completions, tt.daysAgo...)
			require.NoError(t, w.processJob(context.Background(), StreakJob{HabitID: h.ID}))

			got, err := habits.GetByID(context.Background(), h.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
		})
	}
}

func TestStreakWorker_UnknownHabit(t *testing.T) {
	w := NewStreakWorker(repository.NewInMemoryHabitRepository(), repository.NewInMemoryCompletionRepository(), nil, nil, nil)

	err := w.processJob(context.Background(), StreakJob{HabitID: "missing"})
	assert.True(t, errors.Is(err, domain.ErrHabitNotFound))
}

func TestStreakWorker_StartProcessesQueue(t *testing.T) {
	habits := repository.NewInMemoryHabitRepository()
	completions := repository.NewInMemoryCompletionRepository()
	obs := newRecordingObserver()
	w := NewStreakWorker(habits, completions, domain.FixedClock{At: fixedNow}, obs, zap.NewNop())

	h := seedHabit(t, habits, completions, 0, 1, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	w.Enqueue(h.ID)

	assert.Eventually(t, func() bool {
		got, err := habits.GetByID(context.Background(), h.ID)
		return err == nil && got.CurrentStreak == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStreakWorker_EnqueueNeverBlocks(t *testing.T) {
	w := NewStreakWorker(nil, nil, nil, nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 150; i++ {
			w.Enqueue("habit")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	assert.Len(t, w.jobs, 100)
}
