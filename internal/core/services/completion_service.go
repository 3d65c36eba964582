package services

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/streak"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

var motivationalMessages = []string{
	"🎉 Habit marked complete!",
	"🚀 You are on a roll!",
	"🌟 Great job staying consistent!",
	"💪 Strength comes from discipline!",
	"🔥 You are unstoppable today!",
	"✨ Another step towards your best self!",
	"🏆 Level up! Keep it going!",
}

// StreakQueue receives habits whose stored streak snapshot is stale.
type StreakQueue interface {
	Enqueue(habitID string)
}

// CompletionObserver is told about completion changes, e.g. for metrics.
type CompletionObserver interface {
	CompletionRecorded()
	CompletionUndone()
}

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	queue     StreakQueue
	observer  CompletionObserver
	calc      *streak.Calculator
	clock     domain.Clock
	logger    *zap.Logger
}

func NewCompletionService(
	repo domain.CompletionRepository,
	habitRepo domain.HabitRepository,
	queue StreakQueue,
	observer CompletionObserver,
	clock domain.Clock,
	logger *zap.Logger,
) *CompletionService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		queue:     queue,
		observer:  observer,
		calc:      streak.NewCalculator(clock, logger),
		clock:     clock,
		logger:    logger,
	}
}

type CompleteInput struct {
	HabitID string
	UserID  string
	Notes   string
}

type CompleteResult struct {
	Completion *domain.Completion `json:"completion"`
	streak.Result
	Message string `json:"-"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type CompletionPage struct {
	Completions []*domain.Completion `json:"completions"`
	Pagination  Pagination           `json:"pagination"`
}

func (s *CompletionService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *CompletionService) changed(habitID string) {
	if s.queue != nil {
		s.queue.Enqueue(habitID)
	}
}

// CompleteToday records today's completion and returns the updated streaks.
func (s *CompletionService) CompleteToday(ctx context.Context, input CompleteInput) (*CompleteResult, error) {
	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := domain.DateOf(now)

	completion, err := domain.NewCompletion(habit.ID, input.UserID, today, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	history, err := s.repo.ListByHabitID(ctx, habit.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	dates := domain.Dates(history)

	s.changed(habit.ID)
	if s.observer != nil {
		s.observer.CompletionRecorded()
	}

	return &CompleteResult{
		Completion: completion,
		Result: streak.Result{
			Current: s.calc.CurrentAt(today, dates, habit.FreezeState(now.Location())),
			Longest: streak.Longest(dates),
		},
		Message: motivationalMessages[rand.IntN(len(motivationalMessages))],
	}, nil
}

// Undo removes the completion of a habit on a given day.
func (s *CompletionService) Undo(ctx context.Context, habitID, userID string, date domain.Date) error {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, habitID, date); err != nil {
		return err
	}

	s.changed(habitID)
	if s.observer != nil {
		s.observer.CompletionUndone()
	}
	return nil
}

// List pages through a habit's history, newest first. page starts at 1.
func (s *CompletionService) List(ctx context.Context, habitID, userID string, page, limit int) (*CompletionPage, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	completions, err := s.repo.ListByHabitID(ctx, habitID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountByHabitID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	return &CompletionPage{
		Completions: completions,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

func (s *CompletionService) UpdateNotes(ctx context.Context, habitID, userID string, date domain.Date, notes string) (*domain.Completion, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	completion, err := s.repo.GetByHabitAndDate(ctx, habitID, date)
	if err != nil {
		return nil, err
	}

	if err := completion.SetNotes(notes); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, completion); err != nil {
		return nil, err
	}
	return completion, nil
}
