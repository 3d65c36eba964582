package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/streak"
)

const streakWorkerName = "streak"

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	ListByHabitID(ctx context.Context, habitID string, limit, offset int) ([]*domain.Completion, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes the stored streak snapshot of habits whose
// completions changed.
type StreakWorker struct {
	habitRepo      HabitRepository
	completionRepo CompletionRepository
	calc           *streak.Calculator
	clock          domain.Clock
	observer       Observer
	logger         *zap.Logger
	jobs           chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, cRepo CompletionRepository, clock domain.Clock, observer Observer, logger *zap.Logger) *StreakWorker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreakWorker{
		habitRepo:      hRepo,
		completionRepo: cRepo,
		calc:           streak.NewCalculator(clock, logger),
		clock:          clock,
		observer:       observerOrNop(observer),
		logger:         logger.Named("streak_worker"),
		jobs:           make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("Streak worker started")
		for {
			select {
			case job := <-w.jobs:
				err := w.processJob(ctx, job)
				w.observer.JobDone(streakWorkerName, err)
			case <-ctx.Done():
				w.logger.Info("Streak worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks; when the queue is full the job is dropped and the
// snapshot is fixed by the next change to that habit.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.logger.Warn("Streak queue full, dropping job", zap.String("habit_id", habitID))
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) error {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		w.logger.Error("Failed to fetch habit", zap.String("habit_id", job.HabitID), zap.Error(err))
		return err
	}

	completions, err := w.completionRepo.ListByHabitID(ctx, job.HabitID, 0, 0)
	if err != nil {
		w.logger.Error("Failed to fetch completions", zap.String("habit_id", job.HabitID), zap.Error(err))
		return err
	}

	loc := w.clock.Now().Location()
	r := w.calc.Compute(domain.Dates(completions), habit.FreezeState(loc))

	if habit.CurrentStreak == r.Current && habit.LongestStreak == r.Longest {
		return nil
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, r.Current, r.Longest); err != nil {
		w.logger.Error("Failed to store streaks", zap.String("habit_id", habit.ID), zap.Error(err))
		return err
	}

	w.logger.Debug("Streak updated",
		zap.String("habit_id", habit.ID),
		zap.Int("current", r.Current),
		zap.Int("longest", r.Longest),
	)
	return nil
}
