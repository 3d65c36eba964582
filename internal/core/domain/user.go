package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidName        = errors.New("name must be between 2 and 100 characters")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
)

var reminderRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

const bcryptCost = 12

type User struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	ReminderTime    *string   `json:"reminderTime,omitempty" db:"reminder_time"`
	ConfettiEnabled bool      `json:"confettiEnabled" db:"confetti_enabled"`
	SoundEnabled    bool      `json:"soundEnabled" db:"sound_enabled"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

func NewUser(id, name, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	name = strings.TrimSpace(name)
	if !isValidName(name) {
		return nil, ErrInvalidName
	}

	now := time.Now().UTC()
	return &User{
		ID:              id,
		Name:            name,
		Email:           strings.ToLower(email),
		ConfettiEnabled: true,
		SoundEnabled:    true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcryptCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
}

// UserSettings is a partial update; nil fields are left untouched.
type UserSettings struct {
	Name            *string
	ReminderTime    *string
	ConfettiEnabled *bool
	SoundEnabled    *bool
}

func (u *User) ApplySettings(s UserSettings) error {
	if s.Name != nil {
		name := strings.TrimSpace(*s.Name)
		if !isValidName(name) {
			return ErrInvalidName
		}
		u.Name = name
	}
	if s.ReminderTime != nil {
		if !reminderRegex.MatchString(*s.ReminderTime) {
			return ErrInvalidReminder
		}
		rt := normalizeReminder(*s.ReminderTime)
		u.ReminderTime = &rt
	}
	if s.ConfettiEnabled != nil {
		u.ConfettiEnabled = *s.ConfettiEnabled
	}
	if s.SoundEnabled != nil {
		u.SoundEnabled = *s.SoundEnabled
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// normalizeReminder zero-pads the hour so "7:05" and "07:05" match the same minute.
func normalizeReminder(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 2 && n <= 100
}
