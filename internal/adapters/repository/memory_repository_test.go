package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethernova/habits-api/internal/core/domain"
)

func TestInMemoryHabitRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryHabitRepository()

	a, _ := domain.NewHabit("u1", "A", "", domain.CategoryHealth)
	b, _ := domain.NewHabit("u1", "B", "", domain.CategoryHealth)
	b.Order = 1
	other, _ := domain.NewHabit("u2", "Other", "", domain.CategoryHealth)
	for _, h := range []*domain.Habit{a, b, other} {
		require.NoError(t, repo.Create(ctx, h))
	}

	t.Run("returned values are copies", func(t *testing.T) {
		got, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		got.Title = "mutated"

		again, _ := repo.GetByID(ctx, a.ID)
		assert.Equal(t, "A", again.Title)
	})

	t.Run("list is ordered and filtered", func(t *testing.T) {
		list, err := repo.ListByUserID(ctx, "u1", false)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)
		assert.Equal(t, b.ID, list[1].ID)

		n, _ := repo.CountByUserID(ctx, "u1")
		assert.Equal(t, 2, n)
	})

	t.Run("optimistic locking", func(t *testing.T) {
		first, _ := repo.GetByID(ctx, a.ID)
		stale, _ := repo.GetByID(ctx, a.ID)

		require.NoError(t, repo.Update(ctx, first))
		assert.Equal(t, 2, first.Version)
		assert.ErrorIs(t, repo.Update(ctx, stale), domain.ErrHabitConflict)
	})

	t.Run("reorder rejects foreign habits", func(t *testing.T) {
		err := repo.Reorder(ctx, "u1", map[string]int{a.ID: 3, other.ID: 0})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		got, _ := repo.GetByID(ctx, a.ID)
		assert.Equal(t, 0, got.Order)

		require.NoError(t, repo.Reorder(ctx, "u1", map[string]int{a.ID: 3, b.ID: 0}))
		list, _ := repo.ListByUserID(ctx, "u1", false)
		assert.Equal(t, b.ID, list[0].ID)
	})

	t.Run("expire freezes", func(t *testing.T) {
		now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		h, _ := repo.GetByID(ctx, b.ID)
		require.NoError(t, h.Freeze(1, now))
		require.NoError(t, repo.Update(ctx, h))

		n, err := repo.ExpireFreezes(ctx, now)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = repo.ExpireFreezes(ctx, now.Add(72*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, _ := repo.GetByID(ctx, b.ID)
		assert.False(t, got.IsFrozen)
	})

	t.Run("soft delete shows up in changes", func(t *testing.T) {
		since := time.Now().UTC().Add(-time.Millisecond)
		require.NoError(t, repo.Delete(ctx, other.ID))

		_, err := repo.GetByID(ctx, other.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		changes, err := repo.GetChanges(ctx, "u2", since)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.NotNil(t, changes[0].DeletedAt)
	})
}

func TestInMemoryCompletionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCompletionRepository()
	day := domain.MustParseDate("2024-03-15")

	for i := 0; i < 5; i++ {
		c, err := domain.NewCompletion("h1", "u1", day.AddDays(-i), "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, c))
	}

	dup, _ := domain.NewCompletion("h1", "u1", day, "")
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrCompletionExists)

	page, err := repo.ListByHabitID(ctx, "h1", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, day.AddDays(-1), page[0].Date)

	empty, err := repo.ListByHabitID(ctx, "h1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ranged, err := repo.ListByUserID(ctx, "u1", day.AddDays(-2), domain.Date{})
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	require.NoError(t, repo.Delete(ctx, "h1", day))
	n, _ := repo.CountByHabitID(ctx, "h1")
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, repo.Delete(ctx, "h1", day), domain.ErrCompletionNotFound)
}

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	u, err := domain.NewUser("u1", "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	clash, _ := domain.NewUser("u2", "Ada Again", "ADA@example.com")
	assert.ErrorIs(t, repo.Create(ctx, clash), domain.ErrEmailAlreadyExists)

	reminder := "8:15"
	require.NoError(t, u.ApplySettings(domain.UserSettings{ReminderTime: &reminder}))
	require.NoError(t, repo.Update(ctx, u))

	due, err := repo.ListByReminderTime(ctx, "08:15")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "u1", due[0].ID)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
