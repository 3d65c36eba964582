// Package streak derives current and longest streaks from sparse sets of
// completion dates. Nothing here is persisted; every call works on the
// snapshot it is given.
package streak

import (
	"slices"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
)

const (
	// FreezeGraceDays is how far before frozenUntil a freeze still covers missed days.
	FreezeGraceDays = 3

	// MaxStreakIterations bounds the backward walk of Current. Reaching it means
	// the input is anomalous (no real streak spans ten years).
	MaxStreakIterations = 3650
)

type Result struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

type Calculator struct {
	clock  domain.Clock
	logger *zap.Logger
}

func NewCalculator(clock domain.Clock, logger *zap.Logger) *Calculator {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{clock: clock, logger: logger}
}

// Today samples the calculator's clock.
func (c *Calculator) Today() domain.Date {
	return domain.Today(c.clock)
}

// Compute returns both streaks, sampling the clock once.
func (c *Calculator) Compute(dates []domain.Date, freeze *domain.FreezeState) Result {
	return Result{
		Current: c.CurrentAt(c.Today(), dates, freeze),
		Longest: Longest(dates),
	}
}

func (c *Calculator) Current(dates []domain.Date, freeze *domain.FreezeState) int {
	return c.CurrentAt(c.Today(), dates, freeze)
}

// CurrentAt computes the streak ending at today (or yesterday when today is
// not done yet). A frozen habit anchors on today even without a completion,
// and days in [frozenUntil-FreezeGraceDays, frozenUntil] count as covered.
// freeze.IsFrozen is trusted as given; clearing expired freezes is the
// caller's job.
func (c *Calculator) CurrentAt(today domain.Date, dates []domain.Date, freeze *domain.FreezeState) int {
	frozen := freeze != nil && freeze.IsFrozen
	if len(dates) == 0 && !frozen {
		return 0
	}

	done := make(map[domain.Date]struct{}, len(dates))
	for _, d := range dates {
		done[d] = struct{}{}
	}
	completed := func(d domain.Date) bool {
		_, ok := done[d]
		return ok
	}

	var anchor domain.Date
	switch yesterday := today.AddDays(-1); {
	case completed(today):
		anchor = today
	case completed(yesterday):
		anchor = yesterday
	case frozen:
		anchor = today
	default:
		return 0
	}

	var coverFrom, coverTo domain.Date
	covering := frozen && freeze.FrozenUntil != nil
	if covering {
		coverTo = *freeze.FrozenUntil
		coverFrom = coverTo.AddDays(-FreezeGraceDays)
	}

	count := 0
	day := anchor
	for i := 0; ; i++ {
		if i >= MaxStreakIterations {
			c.logger.Warn("Streak iteration cap reached, truncating",
				zap.Int("cap", MaxStreakIterations),
				zap.Stringer("anchor", anchor),
			)
			break
		}

		if completed(day) {
			count++
		} else if covering && !day.Before(coverFrom) && !day.After(coverTo) {
			count++
		} else {
			break
		}
		day = day.AddDays(-1)
	}

	return count
}

// Longest returns the longest run of consecutive days in dates.
func Longest(dates []domain.Date) int {
	sorted := Unique(dates)
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDays(1) == sorted[i] {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}

// Unique returns the distinct dates in ascending order.
func Unique(dates []domain.Date) []domain.Date {
	out := slices.Clone(dates)
	slices.SortFunc(out, domain.Date.Compare)
	return slices.Compact(out)
}
