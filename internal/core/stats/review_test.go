package stats_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/stats"
)

func TestPreviousWeek(t *testing.T) {
	wantMonday := domain.NewDate(2024, time.March, 4)
	wantSunday := domain.NewDate(2024, time.March, 10)

	tests := []struct {
		name  string
		today domain.Date
	}{
		{name: "Monday", today: domain.NewDate(2024, time.March, 11)},
		{name: "Friday", today: domain.NewDate(2024, time.March, 15)},
		{name: "Sunday belongs to the current week", today: domain.NewDate(2024, time.March, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monday, sunday := stats.PreviousWeek(tt.today)
			assert.Equal(t, wantMonday, monday)
			assert.Equal(t, wantSunday, sunday)
			assert.Equal(t, time.Monday, monday.Weekday())
			assert.Equal(t, time.Sunday, sunday.Weekday())
		})
	}

	t.Run("Across a year boundary", func(t *testing.T) {
		monday, sunday := stats.PreviousWeek(domain.NewDate(2025, time.January, 1))
		assert.Equal(t, domain.NewDate(2024, time.December, 23), monday)
		assert.Equal(t, domain.NewDate(2024, time.December, 29), sunday)
	})
}

func TestBuildWeeklyReview(t *testing.T) {
	lastMonday := domain.NewDate(2024, time.March, 4)

	t.Run("Edge Case: No habits short-circuits", func(t *testing.T) {
		review := stats.BuildWeeklyReview(stats.Snapshot{Today: today})

		assert.False(t, review.HasHabits)

		body, err := json.Marshal(review)
		require.NoError(t, err)
		assert.JSONEq(t, `{"hasHabits":false}`, string(body))
	})

	t.Run("Success: Rates, best, perfect and needs-attention habits", func(t *testing.T) {
		habits := []stats.HabitRef{
			{ID: "perfect", Title: "Meditate", Category: domain.CategoryMindfulness},
			{ID: "five", Title: "Run", Category: domain.CategoryFitness},
			{ID: "two", Title: "Read", Category: domain.CategoryLearning},
		}
		var completions []stats.CompletionRef
		for i := 0; i < 7; i++ {
			completions = append(completions, done("perfect", lastMonday.AddDays(i)))
		}
		for i := 0; i < 5; i++ {
			completions = append(completions, done("five", lastMonday.AddDays(i)))
		}
		completions = append(completions,
			done("two", lastMonday),
			done("two", lastMonday.AddDays(6)),
			done("two", lastMonday.AddDays(-1)), // previous week
			done("two", lastMonday.AddDays(7)),  // current week
		)

		review := stats.BuildWeeklyReview(stats.Snapshot{Today: today, Habits: habits, Completions: completions})

		assert.True(t, review.HasHabits)
		assert.Equal(t, "4 Mar", review.WeekRange.Start)
		assert.Equal(t, "10 Mar", review.WeekRange.End)
		assert.Equal(t, 3, review.TotalHabits)
		assert.Equal(t, 14, review.TotalCompletions)
		assert.Equal(t, 67, review.CompletionRate) // 14 / 21

		require.NotNil(t, review.BestHabit)
		assert.Equal(t, "perfect", review.BestHabit.ID)
		assert.Equal(t, 7, review.BestHabit.Completions)
		assert.Equal(t, domain.CategoryMindfulness.Color(), review.BestHabit.Color)

		require.Len(t, review.PerfectHabits, 1)
		assert.Equal(t, "Meditate", review.PerfectHabits[0].Title)

		require.Len(t, review.NeedsAttentionHabits, 1)
		assert.Equal(t, "two", review.NeedsAttentionHabits[0].ID)
		assert.Equal(t, 5, review.NeedsAttentionHabits[0].MissedDays)
		assert.Equal(t, 2, review.NeedsAttentionHabits[0].Completions)
	})

	t.Run("Best habit ties go to the first habit in display order", func(t *testing.T) {
		habits := []stats.HabitRef{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
		completions := []stats.CompletionRef{done("b", lastMonday), done("a", lastMonday.AddDays(1))}

		review := stats.BuildWeeklyReview(stats.Snapshot{Today: today, Habits: habits, Completions: completions})

		require.NotNil(t, review.BestHabit)
		assert.Equal(t, "a", review.BestHabit.ID)
	})

	t.Run("Best habit is null when nothing was done", func(t *testing.T) {
		habits := []stats.HabitRef{{ID: "a", Title: "A"}}

		review := stats.BuildWeeklyReview(stats.Snapshot{Today: today, Habits: habits})

		assert.Nil(t, review.BestHabit)
		assert.Equal(t, 0, review.CompletionRate)
		assert.Empty(t, review.PerfectHabits)
		require.Len(t, review.NeedsAttentionHabits, 1)
		assert.Equal(t, 7, review.NeedsAttentionHabits[0].MissedDays)

		body, err := json.Marshal(review)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"bestHabit":null`)
		assert.Contains(t, string(body), `"perfectHabits":[]`)
	})
}
