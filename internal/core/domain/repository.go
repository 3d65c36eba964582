package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitConflict      = errors.New("habit version conflict")
	ErrCompletionNotFound = errors.New("completion not found")
	ErrCompletionExists   = errors.New("habit already completed on this date")
	ErrUnauthorized       = errors.New("unauthorized access to resource")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves the user's habits ordered by display order.
	// archived selects the archived or the active set.
	ListByUserID(ctx context.Context, userID string, archived bool) ([]*Habit, error)

	// ListAllByUserID retrieves every non-deleted habit, archived or not.
	ListAllByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// CountByUserID returns how many non-deleted habits the user owns.
	CountByUserID(ctx context.Context, userID string) (int, error)

	// Update modifies the state of an existing habit (optimistic locking on Version).
	Update(ctx context.Context, habit *Habit) error

	// Delete removes a habit (soft delete, visible to sync).
	Delete(ctx context.Context, id string) error

	// Reorder sets the display order of several habits atomically.
	// Every id must belong to userID, otherwise nothing changes and ErrUnauthorized is returned.
	Reorder(ctx context.Context, userID string, orders map[string]int) error

	// GetChanges returns only the deltas occurring after a specific instant.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	// UpdateStreaks stores the denormalized streak snapshot.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error

	// ExpireFreezes clears freezes whose frozen_until is before now and returns how many changed.
	ExpireFreezes(ctx context.Context, now time.Time) (int, error)
}

type CompletionRepository interface {
	// Create persists a completion. Returns ErrCompletionExists when the
	// (habit, date) pair is already recorded.
	Create(ctx context.Context, c *Completion) error

	// GetByHabitAndDate retrieves the completion of a habit on a date.
	GetByHabitAndDate(ctx context.Context, habitID string, date Date) (*Completion, error)

	// Update modifies the notes of an existing completion.
	Update(ctx context.Context, c *Completion) error

	// Delete removes the completion of a habit on a date.
	Delete(ctx context.Context, habitID string, date Date) error

	// ListByHabitID returns the habit's completions, newest first.
	// limit <= 0 means no limit.
	ListByHabitID(ctx context.Context, habitID string, limit, offset int) ([]*Completion, error)

	// CountByHabitID returns how many completions a habit has.
	CountByHabitID(ctx context.Context, habitID string) (int, error)

	// ListByUserID returns every completion of the user within [from, to].
	// A zero from or to leaves that side unbounded.
	ListByUserID(ctx context.Context, userID string, from, to Date) ([]*Completion, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error

	// ListByReminderTime returns users whose reminder is set to hhmm ("HH:MM").
	ListByReminderTime(ctx context.Context, hhmm string) ([]*User, error)
}
