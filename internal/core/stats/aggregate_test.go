package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/stats"
	"github.com/aethernova/habits-api/internal/core/streak"
)

// 2024-03-15 is a Friday.
var today = domain.NewDate(2024, time.March, 15)

func daysAgo(n int) domain.Date {
	return today.AddDays(-n)
}

func done(habitID string, d domain.Date) stats.CompletionRef {
	return stats.CompletionRef{HabitID: habitID, Date: d}
}

func twoHabits() []stats.HabitRef {
	return []stats.HabitRef{
		{ID: "h1", Title: "Run", Category: domain.CategoryFitness},
		{ID: "h2", Title: "Read", Category: domain.CategoryLearning},
	}
}

func TestWeekly(t *testing.T) {
	t.Run("Success: One of two habits done gives 50%", func(t *testing.T) {
		s := stats.Snapshot{
			Today:       today,
			Habits:      twoHabits(),
			Completions: []stats.CompletionRef{done("h1", today), done("h1", daysAgo(2)), done("h2", daysAgo(2))},
		}

		got := stats.Weekly(s)

		require.Len(t, got, 7)
		assert.Equal(t, daysAgo(6), got[0].Date, "oldest day comes first")
		assert.Equal(t, today, got[6].Date)
		assert.Equal(t, "Fri", got[6].Day)
		assert.Equal(t, "Sat", got[0].Day)

		assert.Equal(t, 1, got[6].Completed)
		assert.Equal(t, 2, got[6].Total)
		assert.Equal(t, 50, got[6].Rate)

		assert.Equal(t, 2, got[4].Completed)
		assert.Equal(t, 100, got[4].Rate)

		assert.Equal(t, 0, got[5].Rate)
	})

	t.Run("Edge Case: Zero habits never divides by zero", func(t *testing.T) {
		got := stats.Weekly(stats.Snapshot{Today: today})

		require.Len(t, got, 7)
		for _, p := range got {
			assert.Equal(t, 0, p.Total)
			assert.Equal(t, 0, p.Rate)
		}
	})

	t.Run("Edge Case: Duplicates and unknown habits are ignored", func(t *testing.T) {
		s := stats.Snapshot{
			Today:       today,
			Habits:      twoHabits(),
			Completions: []stats.CompletionRef{done("h1", today), done("h1", today), done("ghost", today)},
		}

		got := stats.Weekly(s)
		assert.Equal(t, 1, got[6].Completed)
	})

	t.Run("Rounding is half away from zero", func(t *testing.T) {
		habits := []stats.HabitRef{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		s := stats.Snapshot{
			Today:       today,
			Habits:      habits,
			Completions: []stats.CompletionRef{done("a", today), done("b", today)},
		}

		got := stats.Weekly(s)
		assert.Equal(t, 67, got[6].Rate)
	})
}

func TestHeatmap(t *testing.T) {
	t.Run("Success: 90 entries with intensity", func(t *testing.T) {
		s := stats.Snapshot{
			Today:       today,
			Habits:      twoHabits(),
			Completions: []stats.CompletionRef{done("h2", daysAgo(89)), done("h1", today), done("h1", daysAgo(90))},
		}

		got := stats.Heatmap(s)

		require.Len(t, got, 90)
		assert.Equal(t, daysAgo(89), got[0].Date)
		assert.Equal(t, 1, got[0].Completed)
		assert.InDelta(t, 0.5, got[0].Intensity, 1e-9)
		assert.InDelta(t, 0.5, got[89].Intensity, 1e-9)
		assert.Equal(t, 0.0, got[45].Intensity)
	})

	t.Run("Edge Case: Zero habits yields zero intensity", func(t *testing.T) {
		got := stats.Heatmap(stats.Snapshot{Today: today})

		require.Len(t, got, 90)
		for _, p := range got {
			assert.Equal(t, 0.0, p.Intensity)
		}
	})
}

func TestCategoryBreakdown(t *testing.T) {
	s := stats.Snapshot{
		Today: today,
		Habits: []stats.HabitRef{
			{ID: "g1", Category: domain.CategoryGeneral},
			{ID: "f1", Category: domain.CategoryFitness},
			{ID: "f2", Category: domain.CategoryFitness},
			{ID: "h1", Category: domain.CategoryHealth},
		},
		Completions: []stats.CompletionRef{
			done("f1", today),
			done("f1", daysAgo(29)),
			done("f1", daysAgo(30)), // outside the 30-day window
			done("f2", daysAgo(3)),
			done("g1", daysAgo(1)),
		},
	}

	got := stats.CategoryBreakdown(s)

	require.Len(t, got, 3, "categories without habits are omitted")
	assert.Equal(t, domain.CategoryHealth, got[0].Category, "canonical order, not input order")
	assert.Equal(t, domain.CategoryFitness, got[1].Category)
	assert.Equal(t, domain.CategoryGeneral, got[2].Category)

	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 0, got[0].Rate)

	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, 5, got[1].Rate) // 3 / 60

	assert.Equal(t, 3, got[2].Rate) // 1 / 30

	seen := map[domain.Category]bool{}
	for _, c := range got {
		assert.False(t, seen[c.Category], "category %s appears twice", c.Category)
		seen[c.Category] = true
	}
}

func TestProgression(t *testing.T) {
	s := stats.Snapshot{
		Today:       today,
		Habits:      twoHabits(),
		Completions: []stats.CompletionRef{done("h1", daysAgo(13)), done("h2", daysAgo(13)), done("h1", daysAgo(14))},
	}

	got := stats.Progression(s)

	require.Len(t, got, 14)
	assert.Equal(t, daysAgo(13), got[0].Date)
	assert.Equal(t, 100, got[0].Rate)
	assert.Equal(t, today, got[13].Date)
	assert.Equal(t, 0, got[13].Rate)
}

func TestBestWeekday(t *testing.T) {
	monday := domain.NewDate(2024, time.March, 11)
	tuesday := monday.AddDays(1)
	sunday := monday.AddDays(-1)

	t.Run("Most completions wins", func(t *testing.T) {
		s := stats.Snapshot{
			Today:       today,
			Habits:      twoHabits(),
			Completions: []stats.CompletionRef{done("h1", tuesday), done("h2", tuesday), done("h1", monday)},
		}
		assert.Equal(t, "Tuesday", stats.BestWeekday(s))
	})

	t.Run("Tie goes to the earliest day in Sunday..Saturday order", func(t *testing.T) {
		s := stats.Snapshot{
			Today:       today,
			Habits:      twoHabits(),
			Completions: []stats.CompletionRef{done("h1", tuesday), done("h1", monday), done("h1", sunday)},
		}
		assert.Equal(t, "Sunday", stats.BestWeekday(s))

		s.Completions = []stats.CompletionRef{done("h1", tuesday), done("h1", monday)}
		assert.Equal(t, "Monday", stats.BestWeekday(s))
	})

	t.Run("No completions", func(t *testing.T) {
		assert.Equal(t, stats.NoBestDay, stats.BestWeekday(stats.Snapshot{Today: today, Habits: twoHabits()}))
	})
}

func TestOverallRate(t *testing.T) {
	s := stats.Snapshot{
		Today:  today,
		Habits: twoHabits(),
	}
	for i := 0; i < 30; i++ {
		s.Completions = append(s.Completions, done("h1", daysAgo(i)))
	}
	s.Completions = append(s.Completions, done("h2", daysAgo(40)))

	assert.Equal(t, 50, stats.OverallRate(s))
	assert.Equal(t, 0, stats.OverallRate(stats.Snapshot{Today: today}))
}

func TestBuildAnalytics(t *testing.T) {
	t.Run("No habits", func(t *testing.T) {
		got := stats.BuildAnalytics(stats.Snapshot{Today: today})

		assert.Empty(t, got.CategoryStats)
		assert.NotNil(t, got.CategoryStats)
		assert.Empty(t, got.Progression)
		assert.Equal(t, stats.NoBestDay, got.BestDay)
	})

	t.Run("With habits", func(t *testing.T) {
		s := stats.Snapshot{Today: today, Habits: twoHabits(), Completions: []stats.CompletionRef{done("h1", today)}}
		got := stats.BuildAnalytics(s)

		assert.Len(t, got.CategoryStats, 2)
		assert.Len(t, got.Progression, 14)
		assert.Equal(t, "Friday", got.BestDay)
	})
}

func TestBuildDashboard(t *testing.T) {
	s := stats.Snapshot{Today: today, Habits: twoHabits(), Completions: []stats.CompletionRef{done("h1", today)}}
	streaks := []streak.Result{{Current: 1, Longest: 9}, {Current: 4, Longest: 5}}

	got := stats.BuildDashboard(s, streaks)

	assert.Equal(t, 2, got.TotalHabits)
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, 9, got.LongestStreak)
	assert.Equal(t, 2, got.OverallCompletionRate) // 1 / 60
	assert.Len(t, got.WeeklyData, 7)
	assert.Len(t, got.Heatmap, 90)
}

func TestBuildHabitStats(t *testing.T) {
	t.Run("Created today", func(t *testing.T) {
		got := stats.BuildHabitStats(today, today, 1, streak.Result{Current: 1, Longest: 1})
		assert.Equal(t, 1, got.DaysSinceCreated)
		assert.Equal(t, 100, got.CompletionRate)
	})

	t.Run("Created nine days ago", func(t *testing.T) {
		got := stats.BuildHabitStats(today, daysAgo(9), 5, streak.Result{Current: 2, Longest: 3})
		assert.Equal(t, 10, got.DaysSinceCreated)
		assert.Equal(t, 50, got.CompletionRate)
		assert.Equal(t, 5, got.TotalCompletions)
		assert.Equal(t, 2, got.CurrentStreak)
		assert.Equal(t, 3, got.LongestStreak)
	})
}
