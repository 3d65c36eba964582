// Package stats builds the dashboard, analytics and weekly review views from
// an in-memory snapshot of a user's habits and completions. All functions are
// pure: they never touch storage or the clock.
package stats

import (
	"math"
	"time"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/streak"
)

const (
	WeeklyWindowDays      = 7
	HeatmapWindowDays     = 90
	RateWindowDays        = 30
	ProgressionWindowDays = 14

	NoBestDay = "None"
)

var shortDayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type HabitRef struct {
	ID       string
	Title    string
	Category domain.Category
}

type CompletionRef struct {
	HabitID string
	Date    domain.Date
}

// Snapshot is everything an aggregation needs, fetched once by the caller.
// Today is sampled once so every view in a response agrees on the date.
type Snapshot struct {
	Today       domain.Date
	Habits      []HabitRef
	Completions []CompletionRef
}

func NewSnapshot(today domain.Date, habits []*domain.Habit, completions []*domain.Completion) Snapshot {
	s := Snapshot{
		Today:       today,
		Habits:      make([]HabitRef, 0, len(habits)),
		Completions: make([]CompletionRef, 0, len(completions)),
	}
	for _, h := range habits {
		s.Habits = append(s.Habits, HabitRef{ID: h.ID, Title: h.Title, Category: h.Category})
	}
	for _, c := range completions {
		s.Completions = append(s.Completions, CompletionRef{HabitID: c.HabitID, Date: c.Date})
	}
	return s
}

// completions returns the distinct (habit, date) pairs that belong to a habit
// of the snapshot.
func (s Snapshot) completions() []CompletionRef {
	known := make(map[string]struct{}, len(s.Habits))
	for _, h := range s.Habits {
		known[h.ID] = struct{}{}
	}

	seen := make(map[CompletionRef]struct{}, len(s.Completions))
	out := make([]CompletionRef, 0, len(s.Completions))
	for _, c := range s.Completions {
		if _, ok := known[c.HabitID]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (s Snapshot) countByDate() map[domain.Date]int {
	counts := make(map[domain.Date]int)
	for _, c := range s.completions() {
		counts[c.Date]++
	}
	return counts
}

// window returns the n days ending at today, oldest first.
func window(today domain.Date, n int) []domain.Date {
	days := make([]domain.Date, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, today.AddDays(-i))
	}
	return days
}

func inWindow(d, today domain.Date, n int) bool {
	return !d.After(today) && !d.Before(today.AddDays(-(n - 1)))
}

func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Weekly returns one point per day for the last 7 days.
func Weekly(s Snapshot) []domain.WeeklyDataPoint {
	counts := s.countByDate()
	total := len(s.Habits)

	out := make([]domain.WeeklyDataPoint, 0, WeeklyWindowDays)
	for _, d := range window(s.Today, WeeklyWindowDays) {
		completed := counts[d]
		out = append(out, domain.WeeklyDataPoint{
			Date:      d,
			Day:       shortDayNames[d.Weekday()],
			Completed: completed,
			Total:     total,
			Rate:      percent(completed, total),
		})
	}
	return out
}

// Heatmap returns one point per day for the last 90 days, zero days included.
func Heatmap(s Snapshot) []domain.HeatmapPoint {
	counts := s.countByDate()
	total := len(s.Habits)

	out := make([]domain.HeatmapPoint, 0, HeatmapWindowDays)
	for _, d := range window(s.Today, HeatmapWindowDays) {
		completed := counts[d]
		out = append(out, domain.HeatmapPoint{
			Date:      d,
			Completed: completed,
			Total:     total,
			Intensity: ratio(completed, total),
		})
	}
	return out
}

// CategoryBreakdown reports the 30-day completion rate of every category that
// has at least one habit, in canonical category order.
func CategoryBreakdown(s Snapshot) []domain.CategoryStat {
	categoryOf := make(map[string]domain.Category, len(s.Habits))
	habitCount := make(map[domain.Category]int)
	for _, h := range s.Habits {
		categoryOf[h.ID] = h.Category
		habitCount[h.Category]++
	}

	done := make(map[domain.Category]int)
	for _, c := range s.completions() {
		if inWindow(c.Date, s.Today, RateWindowDays) {
			done[categoryOf[c.HabitID]]++
		}
	}

	out := make([]domain.CategoryStat, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		n := habitCount[cat]
		if n == 0 {
			continue
		}
		out = append(out, domain.CategoryStat{
			Category: cat,
			Count:    n,
			Rate:     percent(done[cat], n*RateWindowDays),
		})
	}
	return out
}

// Progression returns the daily completion rate over the last 14 days.
func Progression(s Snapshot) []domain.ProgressionPoint {
	counts := s.countByDate()
	total := len(s.Habits)

	out := make([]domain.ProgressionPoint, 0, ProgressionWindowDays)
	for _, d := range window(s.Today, ProgressionWindowDays) {
		out = append(out, domain.ProgressionPoint{Date: d, Rate: percent(counts[d], total)})
	}
	return out
}

// BestWeekday returns the weekday with most completions of all time.
// Ties go to the earliest weekday in Sunday..Saturday order; NoBestDay when
// nothing was ever completed.
func BestWeekday(s Snapshot) string {
	var tally [7]int
	for _, c := range s.completions() {
		tally[c.Date.Weekday()]++
	}

	best, maxCount := NoBestDay, 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if tally[wd] > maxCount {
			maxCount = tally[wd]
			best = wd.String()
		}
	}
	return best
}

// OverallRate is the completion rate over the last 30 days across all habits.
func OverallRate(s Snapshot) int {
	done := 0
	for _, c := range s.completions() {
		if inWindow(c.Date, s.Today, RateWindowDays) {
			done++
		}
	}
	return percent(done, len(s.Habits)*RateWindowDays)
}

func BuildAnalytics(s Snapshot) domain.Analytics {
	if len(s.Habits) == 0 {
		return domain.Analytics{
			CategoryStats: []domain.CategoryStat{},
			Progression:   []domain.ProgressionPoint{},
			BestDay:       NoBestDay,
		}
	}
	return domain.Analytics{
		CategoryStats: CategoryBreakdown(s),
		Progression:   Progression(s),
		BestDay:       BestWeekday(s),
	}
}

// BuildDashboard combines the aggregations with the per-habit streaks; the
// dashboard shows the best current and best longest streak across habits.
func BuildDashboard(s Snapshot, streaks []streak.Result) domain.DashboardStats {
	out := domain.DashboardStats{
		TotalHabits:           len(s.Habits),
		OverallCompletionRate: OverallRate(s),
		WeeklyData:            Weekly(s),
		Heatmap:               Heatmap(s),
	}
	for _, r := range streaks {
		out.CurrentStreak = max(out.CurrentStreak, r.Current)
		out.LongestStreak = max(out.LongestStreak, r.Longest)
	}
	return out
}

// BuildHabitStats summarizes a single habit since its creation day.
func BuildHabitStats(today, created domain.Date, totalCompletions int, r streak.Result) domain.HabitStats {
	days := max(1, created.DaysUntil(today)+1)
	return domain.HabitStats{
		CurrentStreak:    r.Current,
		LongestStreak:    r.Longest,
		TotalCompletions: totalCompletions,
		CompletionRate:   percent(totalCompletions, days),
		DaysSinceCreated: days,
	}
}
