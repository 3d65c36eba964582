package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethernova/habits-api/internal/core/domain"
)

func newTestUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString(), "Test User", fmt.Sprintf("test_%s@example.com", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("passwordStrong123"))
	return user
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db.DB)
	ctx := context.Background()

	t.Run("Should create a user successfully", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, repo.Create(ctx, user))

		saved, err := repo.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, saved.ID)
		assert.Equal(t, "Test User", saved.Name)
		assert.True(t, saved.ConfettiEnabled)
		assert.Nil(t, saved.ReminderTime)
		assert.False(t, saved.CreatedAt.IsZero())
	})

	t.Run("Should fail on duplicate email", func(t *testing.T) {
		user1 := newTestUser(t)
		require.NoError(t, repo.Create(ctx, user1))

		user2 := newTestUser(t)
		user2.Email = user1.Email
		assert.ErrorIs(t, repo.Create(ctx, user2), domain.ErrEmailAlreadyExists)
	})

	t.Run("Should return ErrUserNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetByEmail(ctx, "nonexistent@ghost.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Should update settings and find by reminder", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, repo.Create(ctx, user))

		reminder := "07:30"
		sound := false
		require.NoError(t, user.ApplySettings(domain.UserSettings{ReminderTime: &reminder, SoundEnabled: &sound}))
		require.NoError(t, repo.Update(ctx, user))

		saved, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, saved.ReminderTime)
		assert.Equal(t, "07:30", *saved.ReminderTime)
		assert.False(t, saved.SoundEnabled)

		due, err := repo.ListByReminderTime(ctx, "07:30")
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, user.ID, due[0].ID)
	})

	t.Run("Should delete a user", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.Delete(ctx, user.ID))
		_, err := repo.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, user.ID), domain.ErrUserNotFound)
	})
}
