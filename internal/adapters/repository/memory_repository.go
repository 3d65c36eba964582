package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aethernova/habits-api/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.CompletionRepository = (*InMemoryCompletionRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

// InMemoryHabitRepository mirrors the Postgres semantics (soft delete,
// optimistic locking) without a database. Values are copied on the way in
// and out so callers never share state with the store.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	c := *h
	if h.FrozenUntil != nil {
		t := *h.FrozenUntil
		c.FrozenUntil = &t
	}
	if h.DeletedAt != nil {
		t := *h.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if habit.Version == 0 {
		habit.Version = 1
	}
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) list(userID string, keep func(*domain.Habit) bool) []*domain.Habit {
	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil && keep(h) {
			habits = append(habits, cloneHabit(h))
		}
	}

	slices.SortFunc(habits, func(a, b *domain.Habit) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return habits
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string, archived bool) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(userID, func(h *domain.Habit) bool { return h.Archived == archived }), nil
}

func (r *InMemoryHabitRepository) ListAllByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(userID, func(*domain.Habit) bool { return true }), nil
}

func (r *InMemoryHabitRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.list(userID, func(*domain.Habit) bool { return true })), nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[habit.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	habit.DeletedAt = &now
	habit.UpdatedAt = now
	habit.Version++
	return nil
}

func (r *InMemoryHabitRepository) Reorder(ctx context.Context, userID string, orders map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range orders {
		h, ok := r.store[id]
		if !ok || h.DeletedAt != nil || h.UserID != userID {
			return domain.ErrUnauthorized
		}
	}

	now := time.Now().UTC()
	for id, order := range orders {
		h := r.store[id]
		h.Order = order
		h.UpdatedAt = now
		h.Version++
	}
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			changes = append(changes, cloneHabit(h))
		}
	}
	slices.SortFunc(changes, func(a, b *domain.Habit) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	return changes, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	h.UpdateStreak(current, longest)
	return nil
}

func (r *InMemoryHabitRepository) ExpireFreezes(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, h := range r.store {
		if h.DeletedAt == nil && h.FreezeExpired(now) {
			h.Unfreeze()
			h.Version++
			n++
		}
	}
	return n, nil
}

type completionKey struct {
	habitID string
	date    domain.Date
}

type InMemoryCompletionRepository struct {
	store map[completionKey]*domain.Completion

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store: make(map[completionKey]*domain.Completion),
	}
}

func cloneCompletion(c *domain.Completion) *domain.Completion {
	out := *c
	if c.Notes != nil {
		n := *c.Notes
		out.Notes = &n
	}
	return &out
}

func newestFirst(a, b *domain.Completion) int {
	return b.Date.Compare(a.Date)
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{c.HabitID, c.Date}
	if _, exists := r.store[key]; exists {
		return domain.ErrCompletionExists
	}
	r.store[key] = cloneCompletion(c)
	return nil
}

func (r *InMemoryCompletionRepository) GetByHabitAndDate(ctx context.Context, habitID string, date domain.Date) (*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[completionKey{habitID, date}]
	if !ok {
		return nil, domain.ErrCompletionNotFound
	}
	return cloneCompletion(c), nil
}

func (r *InMemoryCompletionRepository) Update(ctx context.Context, c *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{c.HabitID, c.Date}
	if _, ok := r.store[key]; !ok {
		return domain.ErrCompletionNotFound
	}
	r.store[key] = cloneCompletion(c)
	return nil
}

func (r *InMemoryCompletionRepository) Delete(ctx context.Context, habitID string, date domain.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{habitID, date}
	if _, ok := r.store[key]; !ok {
		return domain.ErrCompletionNotFound
	}
	delete(r.store, key)
	return nil
}

func (r *InMemoryCompletionRepository) ListByHabitID(ctx context.Context, habitID string, limit, offset int) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Completion{}
	for k, c := range r.store {
		if k.habitID == habitID {
			out = append(out, cloneCompletion(c))
		}
	}
	slices.SortFunc(out, newestFirst)

	if offset > 0 {
		if offset >= len(out) {
			return []*domain.Completion{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryCompletionRepository) CountByHabitID(ctx context.Context, habitID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for k := range r.store {
		if k.habitID == habitID {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryCompletionRepository) ListByUserID(ctx context.Context, userID string, from, to domain.Date) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Completion{}
	for _, c := range r.store {
		if c.UserID != userID {
			continue
		}
		if !from.IsZero() && c.Date.Before(from) {
			continue
		}
		if !to.IsZero() && c.Date.After(to) {
			continue
		}
		out = append(out, cloneCompletion(c))
	}
	slices.SortFunc(out, newestFirst)
	return out, nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.ReminderTime != nil {
		rt := *u.ReminderTime
		c.ReminderTime = &rt
	}
	return &c
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.store[user.ID] = cloneUser(user)
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store[user.ID] = cloneUser(user)
	return nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryUserRepository) ListByReminderTime(ctx context.Context, hhmm string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []*domain.User{}
	for _, u := range r.store {
		if u.ReminderTime != nil && *u.ReminderTime == hhmm {
			users = append(users, cloneUser(u))
		}
	}
	return users, nil
}
