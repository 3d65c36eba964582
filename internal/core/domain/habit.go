package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 200 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrInvalidFreezeDays  = errors.New("freeze length must be between 1 and 3 days")
	ErrNoFreezesAvailable = errors.New("no freezes available")
	ErrInvalidOrder       = errors.New("order cannot be negative")
)

const (
	MaxTitleLen             = 200
	MaxDescLen              = 500
	MaxFreezeDays           = 3
	DefaultFreezesAvailable = 3
)

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryLearning     Category = "learning"
	CategoryMindfulness  Category = "mindfulness"
	CategoryProductivity Category = "productivity"
	CategorySocial       Category = "social"
	CategoryCreativity   Category = "creativity"
	CategoryFinance      Category = "finance"
	CategoryGeneral      Category = "general"
)

// Categories is the closed set of category tags in canonical order.
// Aggregations iterate it exactly in this order.
var Categories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryLearning,
	CategoryMindfulness,
	CategoryProductivity,
	CategorySocial,
	CategoryCreativity,
	CategoryFinance,
	CategoryGeneral,
}

const defaultCategoryColor = "#6366f1"

var categoryColors = map[Category]string{
	CategoryHealth:       "#10b981",
	CategoryFitness:      "#10b981",
	CategoryLearning:     "#6366f1",
	CategoryMindfulness:  "#8b5cf6",
	CategoryProductivity: "#f59e0b",
	CategorySocial:       "#ec4899",
	CategoryCreativity:   "#f97316",
	CategoryFinance:      "#06b6d4",
	CategoryGeneral:      "#6366f1",
}

func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryGeneral, nil
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return defaultCategoryColor
}

type Habit struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"userId" db:"user_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description,omitempty" db:"description"`
	Category         Category   `json:"category" db:"category"`
	Order            int        `json:"order" db:"sort_order"`
	Archived         bool       `json:"archived" db:"archived"`
	IsFrozen         bool       `json:"isFrozen" db:"is_frozen"`
	FrozenUntil      *time.Time `json:"frozenUntil" db:"frozen_until"`
	FreezesAvailable int        `json:"freezesAvailable" db:"freezes_available"`
	CurrentStreak    int        `json:"currentStreak" db:"current_streak"`
	LongestStreak    int        `json:"longestStreak" db:"longest_streak"`
	Version          int        `json:"version" db:"version"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

func validateHabitFields(title, desc string) error {
	if title == "" {
		return ErrHabitTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}
	if utf8.RuneCountInString(desc) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	return nil
}

func NewHabit(userID, title, description string, category Category) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanTitle := strings.TrimSpace(title)
	cleanDesc := strings.TrimSpace(description)
	if err := validateHabitFields(cleanTitle, cleanDesc); err != nil {
		return nil, err
	}

	if category == "" {
		category = CategoryGeneral
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	now := time.Now().UTC()

	return &Habit{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            cleanTitle,
		Description:      cleanDesc,
		Category:         category,
		FreezesAvailable: DefaultFreezesAvailable,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Update applies a partial change; nil fields are left untouched.
func (h *Habit) Update(title, description *string, category *Category) error {
	if h.Archived {
		return ErrHabitArchived
	}

	newTitle := h.Title
	if title != nil {
		newTitle = strings.TrimSpace(*title)
	}
	newDesc := h.Description
	if description != nil {
		newDesc = strings.TrimSpace(*description)
	}
	newCategory := h.Category
	if category != nil {
		if !category.Valid() {
			return ErrInvalidCategory
		}
		newCategory = *category
	}

	if err := validateHabitFields(newTitle, newDesc); err != nil {
		return err
	}

	h.Title = newTitle
	h.Description = newDesc
	h.Category = newCategory
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if newOrder < 0 {
		return ErrInvalidOrder
	}
	h.Order = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// ToggleArchive flips the archived flag and reports the new state.
func (h *Habit) ToggleArchive() bool {
	h.Archived = !h.Archived
	h.UpdatedAt = time.Now().UTC()
	return h.Archived
}

// Freeze spends one freeze and protects the streak until the end of the day
// that lies `days` days after now, in now's location.
func (h *Habit) Freeze(days int, now time.Time) error {
	if days < 1 || days > MaxFreezeDays {
		return ErrInvalidFreezeDays
	}
	if h.FreezesAvailable <= 0 {
		return ErrNoFreezesAvailable
	}

	until := DateOf(now).AddDays(days).In(now.Location()).
		Add(24*time.Hour - time.Millisecond)

	h.IsFrozen = true
	h.FrozenUntil = &until
	h.FreezesAvailable--
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Unfreeze() {
	h.IsFrozen = false
	h.FrozenUntil = nil
	h.UpdatedAt = time.Now().UTC()
}

// FreezeExpired reports whether a stored freeze has run out at now.
func (h *Habit) FreezeExpired(now time.Time) bool {
	return h.IsFrozen && h.FrozenUntil != nil && now.After(*h.FrozenUntil)
}

// FreezeState exposes the freeze fields as seen by the streak calculator.
// FrozenUntil is reduced to its calendar date in loc.
func (h *Habit) FreezeState(loc *time.Location) *FreezeState {
	fs := &FreezeState{IsFrozen: h.IsFrozen}
	if h.FrozenUntil != nil {
		d := DateOf(h.FrozenUntil.In(loc))
		fs.FrozenUntil = &d
	}
	return fs
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
}

// FreezeState is the read-only freeze view consumed by streak computation.
type FreezeState struct {
	IsFrozen    bool
	FrozenUntil *Date
}
