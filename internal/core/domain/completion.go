package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxNotesLen = 500

var (
	ErrInvalidCompletion = errors.New("invalid completion data")
	ErrNotesTooLong      = errors.New("notes are too long (max 500 chars)")
)

// Completion records that a habit was done on a calendar day.
// At most one exists per (habit, date).
type Completion struct {
	ID          string    `json:"id" db:"id"`
	HabitID     string    `json:"habitId" db:"habit_id"`
	UserID      string    `json:"userId" db:"user_id"`
	Date        Date      `json:"date" db:"date"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
}

func NewCompletion(habitID, userID string, date Date, notes string) (*Completion, error) {
	c := &Completion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		UserID:      userID,
		Date:        date,
		CompletedAt: time.Now().UTC(),
	}
	if err := c.SetNotes(notes); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetNotes stores trimmed notes; blank notes clear the field.
func (c *Completion) SetNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	if notes == "" {
		c.Notes = nil
		return nil
	}
	c.Notes = &notes
	return nil
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" || strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidCompletion
	}
	if c.Date.IsZero() {
		return ErrInvalidCompletion
	}
	return nil
}

// Dates extracts the completion dates in input order.
func Dates(completions []*Completion) []Date {
	out := make([]Date, 0, len(completions))
	for _, c := range completions {
		out = append(out, c.Date)
	}
	return out
}
