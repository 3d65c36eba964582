package stats

import (
	"slices"

	"github.com/aethernova/habits-api/internal/core/domain"
)

const (
	daysPerWeek         = 7
	needsAttentionLimit = 4
	weekRangeLayout     = "2 Jan"
)

// PreviousWeek returns Monday and Sunday of the week before the one containing
// today. Weeks run Monday..Sunday, so on a Sunday the previous week ended
// seven days earlier.
func PreviousWeek(today domain.Date) (monday, sunday domain.Date) {
	sinceMonday := (int(today.Weekday()) + 6) % 7
	monday = today.AddDays(-sinceMonday - daysPerWeek)
	return monday, monday.AddDays(daysPerWeek - 1)
}

// BuildWeeklyReview digests the previous Mon..Sun week. s.Habits must hold
// the non-archived habits in display order; that order breaks ties.
func BuildWeeklyReview(s Snapshot) domain.WeeklyReview {
	if len(s.Habits) == 0 {
		return domain.WeeklyReview{HasHabits: false}
	}

	monday, sunday := PreviousWeek(s.Today)

	counts := make(map[string]int, len(s.Habits))
	total := 0
	for _, c := range s.completions() {
		if c.Date.Before(monday) || c.Date.After(sunday) {
			continue
		}
		counts[c.HabitID]++
		total++
	}

	review := domain.WeeklyReview{
		HasHabits: true,
		WeekRange: domain.WeekRange{
			Start:     monday.Time().Format(weekRangeLayout),
			End:       sunday.Time().Format(weekRangeLayout),
			StartDate: monday,
			EndDate:   sunday,
		},
		CompletionRate:       percent(total, len(s.Habits)*daysPerWeek),
		TotalHabits:          len(s.Habits),
		TotalCompletions:     total,
		PerfectHabits:        []domain.PerfectHabit{},
		NeedsAttentionHabits: []domain.AttentionHabit{},
	}

	ranked := slices.Clone(s.Habits)
	slices.SortStableFunc(ranked, func(a, b HabitRef) int {
		return counts[b.ID] - counts[a.ID]
	})
	if best := ranked[0]; counts[best.ID] > 0 {
		review.BestHabit = &domain.BestHabit{
			ID:          best.ID,
			Title:       best.Title,
			Completions: counts[best.ID],
			Color:       best.Category.Color(),
		}
	}

	for _, h := range s.Habits {
		n := counts[h.ID]
		if n >= daysPerWeek {
			review.PerfectHabits = append(review.PerfectHabits, domain.PerfectHabit{
				ID:    h.ID,
				Title: h.Title,
				Color: h.Category.Color(),
			})
		}
		if n <= needsAttentionLimit {
			review.NeedsAttentionHabits = append(review.NeedsAttentionHabits, domain.AttentionHabit{
				ID:          h.ID,
				Title:       h.Title,
				MissedDays:  daysPerWeek - n,
				Completions: n,
				Color:       h.Category.Color(),
			})
		}
	}

	return review
}
