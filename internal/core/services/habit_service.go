package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/streak"
)

// ListStreakLookback is how many recent completions feed the live streak
// shown in habit lists.
const ListStreakLookback = 30

type HabitService struct {
	repo        domain.HabitRepository
	completions domain.CompletionRepository
	calc        *streak.Calculator
	clock       domain.Clock
	logger      *zap.Logger
}

func NewHabitService(repo domain.HabitRepository, completions domain.CompletionRepository, clock domain.Clock, logger *zap.Logger) *HabitService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitService{
		repo:        repo,
		completions: completions,
		calc:        streak.NewCalculator(clock, logger),
		clock:       clock,
		logger:      logger,
	}
}

type CreateHabitInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Title       *string
	Description *string
	Category    *string
	Version     int
}

type ReorderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// HabitDetail is a habit with its full completion history, newest first.
type HabitDetail struct {
	*domain.Habit
	Completions []*domain.Completion `json:"completions"`
}

func (s *HabitService) owned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

// List returns the active or archived habits in display order. CurrentStreak
// is recomputed from the most recent completions of each habit.
func (s *HabitService) List(ctx context.Context, userID string, archived bool) ([]*domain.Habit, error) {
	habits, err := s.repo.ListByUserID(ctx, userID, archived)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := domain.DateOf(now)
	for _, h := range habits {
		recent, err := s.completions.ListByHabitID(ctx, h.ID, ListStreakLookback, 0)
		if err != nil {
			return nil, err
		}
		h.CurrentStreak = s.calc.CurrentAt(today, domain.Dates(recent), h.FreezeState(now.Location()))
	}
	return habits, nil
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(input.UserID, input.Title, input.Description, category)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	habit.Order = count

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// Get returns the habit with its whole history and freshly computed streaks.
func (s *HabitService) Get(ctx context.Context, id, userID string) (*HabitDetail, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.completions.ListByHabitID(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	dates := domain.Dates(history)
	habit.UpdateStreak(
		s.calc.CurrentAt(domain.DateOf(now), dates, habit.FreezeState(now.Location())),
		streak.Longest(dates),
	)

	return &HabitDetail{Habit: habit, Completions: history}, nil
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	var category *domain.Category
	if input.Category != nil {
		c, err := domain.ParseCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		category = &c
	}

	if err := habit.Update(input.Title, input.Description, category); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Freeze spends one of the habit's freezes to protect its streak for days days.
func (s *HabitService) Freeze(ctx context.Context, id, userID string, days int) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := habit.Freeze(days, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.logger.Info("Habit frozen",
		zap.String("habit_id", habit.ID),
		zap.Int("days", days),
		zap.Int("freezes_left", habit.FreezesAvailable),
	)
	return habit, nil
}

func (s *HabitService) Unfreeze(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Unfreeze()

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) ToggleArchive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.ToggleArchive()

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Reorder applies a batch of display positions. The whole batch is rejected
// when any habit is not owned by userID.
func (s *HabitService) Reorder(ctx context.Context, userID string, items []ReorderItem) error {
	if len(items) == 0 {
		return nil
	}

	orders := make(map[string]int, len(items))
	for _, it := range items {
		if it.Order < 0 {
			return domain.ErrInvalidOrder
		}
		orders[it.ID] = it.Order
	}

	return s.repo.Reorder(ctx, userID, orders)
}
