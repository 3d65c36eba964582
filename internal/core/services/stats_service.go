package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/stats"
	"github.com/aethernova/habits-api/internal/core/streak"
)

// StatsService loads one snapshot per request and hands it to the pure
// aggregations in package stats. "Today" is sampled once per call.
type StatsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	calc           *streak.Calculator
	clock          domain.Clock
}

func NewStatsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository, clock domain.Clock, logger *zap.Logger) *StatsService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &StatsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		calc:           streak.NewCalculator(clock, logger),
		clock:          clock,
	}
}

type userSnapshot struct {
	stats.Snapshot
	loc     *time.Location
	habits  []*domain.Habit
	byHabit map[string][]domain.Date
}

// load fetches the user's habits and every completion. Archived habits are
// included only when withArchived is set.
func (s *StatsService) load(ctx context.Context, userID string, withArchived bool) (*userSnapshot, error) {
	now := s.clock.Now()
	today := domain.DateOf(now)

	var habits []*domain.Habit
	var err error
	if withArchived {
		habits, err = s.habitRepo.ListAllByUserID(ctx, userID)
	} else {
		habits, err = s.habitRepo.ListByUserID(ctx, userID, false)
	}
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByUserID(ctx, userID, domain.Date{}, today)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]domain.Date, len(habits))
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c.Date)
	}

	return &userSnapshot{
		Snapshot: stats.NewSnapshot(today, habits, completions),
		loc:      now.Location(),
		habits:   habits,
		byHabit:  byHabit,
	}, nil
}

func (s *StatsService) streakOf(snap *userSnapshot, h *domain.Habit) streak.Result {
	dates := snap.byHabit[h.ID]
	return streak.Result{
		Current: s.calc.CurrentAt(snap.Today, dates, h.FreezeState(snap.loc)),
		Longest: streak.Longest(dates),
	}
}

// Dashboard and Analytics cover every habit of the user, archived ones too.
func (s *StatsService) Dashboard(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	snap, err := s.load(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	streaks := make([]streak.Result, 0, len(snap.habits))
	for _, h := range snap.habits {
		streaks = append(streaks, s.streakOf(snap, h))
	}

	dashboard := stats.BuildDashboard(snap.Snapshot, streaks)
	return &dashboard, nil
}

func (s *StatsService) Analytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	snap, err := s.load(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	analytics := stats.BuildAnalytics(snap.Snapshot)
	return &analytics, nil
}

// WeeklyReview only looks at habits that are still active.
func (s *StatsService) WeeklyReview(ctx context.Context, userID string) (*domain.WeeklyReview, error) {
	snap, err := s.load(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	review := stats.BuildWeeklyReview(snap.Snapshot)
	if review.BestHabit != nil {
		for _, h := range snap.habits {
			if h.ID == review.BestHabit.ID {
				review.BestHabit.Streak = s.streakOf(snap, h).Current
				break
			}
		}
	}
	return &review, nil
}

// HabitStats summarizes one habit over its lifetime. Archived habits are
// allowed here.
func (s *StatsService) HabitStats(ctx context.Context, habitID, userID string) (*domain.HabitStats, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	history, err := s.completionRepo.ListByHabitID(ctx, habitID, 0, 0)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := domain.DateOf(now)
	dates := domain.Dates(history)
	r := streak.Result{
		Current: s.calc.CurrentAt(today, dates, habit.FreezeState(now.Location())),
		Longest: streak.Longest(dates),
	}

	created := domain.DateOf(habit.CreatedAt.In(now.Location()))
	out := stats.BuildHabitStats(today, created, len(streak.Unique(dates)), r)
	return &out, nil
}
