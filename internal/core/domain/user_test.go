package domain

import (
	"testing"
	"time"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("Should create user with normalized email", func(t *testing.T) {
		t.Parallel()

		dirtyEmail := "  Test.User@Gmail.COM  "
		id := "123"

		user, err := NewUser(id, "Ada Lovelace", dirtyEmail)

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		expectedEmail := "test.user@gmail.com"
		if user.Email != expectedEmail {
			t.Errorf("Expected email %s, got %s", expectedEmail, user.Email)
		}

		if user.ID != id {
			t.Errorf("Expected id %s, got %s", id, user.ID)
		}

		if user.Name != "Ada Lovelace" {
			t.Errorf("Expected name to be kept, got %s", user.Name)
		}

		if !user.ConfettiEnabled || !user.SoundEnabled {
			t.Error("Expected feedback settings to default to enabled")
		}

		if user.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("Should fail with invalid email", func(t *testing.T) {
		t.Parallel()
		_, err := NewUser("123", "Ada", "invalid-email-format")

		if err != ErrInvalidEmail {
			t.Errorf("Expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("Should fail with a one letter name", func(t *testing.T) {
		t.Parallel()
		_, err := NewUser("123", " A ", "a@b.com")

		if err != ErrInvalidName {
			t.Errorf("Expected ErrInvalidName, got %v", err)
		}
	})
}

func TestUserPassword(t *testing.T) {
	t.Parallel()

	t.Run("Should hash password correctly and update timestamp", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")
		plainPass := "superSecret123"

		oldUpdatedAt := user.UpdatedAt

		time.Sleep(1 * time.Millisecond)

		err := user.SetPassword(plainPass)
		if err != nil {
			t.Fatalf("Expected no error setting password, got %v", err)
		}

		if user.PasswordHash == plainPass {
			t.Error("Password should be hashed, not plain text")
		}

		if len(user.PasswordHash) == 0 {
			t.Error("Password hash should not be empty")
		}

		if !user.UpdatedAt.After(oldUpdatedAt) {
			t.Error("UpdatedAt should be updated after setting password")
		}
	})

	t.Run("Should validate password length", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")

		err := user.SetPassword("short")
		if err != ErrPasswordTooShort {
			t.Errorf("Expected ErrPasswordTooShort, got %v", err)
		}
	})

	t.Run("CheckPassword should work", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")
		pass := "correctPassword"
		_ = user.SetPassword(pass)

		if err := user.CheckPassword(pass); err != nil {
			t.Errorf("Expected password to match, got error: %v", err)
		}

		if err := user.CheckPassword("wrongPassword"); err == nil {
			t.Error("Expected error for wrong password, got nil")
		}
	})
}

func TestUserApplySettings(t *testing.T) {
	t.Parallel()

	ptr := func(s string) *string { return &s }
	off := false

	t.Run("Should apply partial settings", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")

		err := user.ApplySettings(UserSettings{ReminderTime: ptr("7:05"), SoundEnabled: &off})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if user.ReminderTime == nil || *user.ReminderTime != "07:05" {
			t.Errorf("Expected reminder 07:05, got %v", user.ReminderTime)
		}
		if user.SoundEnabled {
			t.Error("Expected sound to be disabled")
		}
		if !user.ConfettiEnabled {
			t.Error("Untouched settings must keep their value")
		}
		if user.Name != "Tester" {
			t.Errorf("Expected name to be unchanged, got %s", user.Name)
		}
	})

	t.Run("Should reject invalid reminder", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")

		if err := user.ApplySettings(UserSettings{ReminderTime: ptr("25:00")}); err != ErrInvalidReminder {
			t.Errorf("Expected ErrInvalidReminder, got %v", err)
		}
		if user.ReminderTime != nil {
			t.Error("Reminder must not be set on error")
		}
	})

	t.Run("Should reject short name", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("123", "Tester", "test@test.com")

		if err := user.ApplySettings(UserSettings{Name: ptr("x")}); err != ErrInvalidName {
			t.Errorf("Expected ErrInvalidName, got %v", err)
		}
	})
}
