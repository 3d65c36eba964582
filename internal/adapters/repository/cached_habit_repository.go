package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitsCacheName = "habits"

// CacheObserver receives hit/miss notifications. *metrics.Collector satisfies it.
type CacheObserver interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// CachedHabitRepository is a read-through cache for the habit lists.
// Every write invalidates the owner's keys.
type CachedHabitRepository struct {
	next     domain.HabitRepository
	cache    *redis.Client
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration, observer CacheObserver, logger *zap.Logger) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		observer: observer,
		logger:   logger,
	}
}

func (r *CachedHabitRepository) cacheKey(userID string, archived bool) string {
	if archived {
		return fmt.Sprintf("habits:%s:archived", userID)
	}
	return fmt.Sprintf("habits:%s:active", userID)
}

func (r *CachedHabitRepository) hit() {
	if r.observer != nil {
		r.observer.CacheHit(habitsCacheName)
	}
}

func (r *CachedHabitRepository) miss() {
	if r.observer != nil {
		r.observer.CacheMiss(habitsCacheName)
	}
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID, false), r.cacheKey(userID, true)).Err(); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// invalidateHabit resolves the owner of id before running write.
func (r *CachedHabitRepository) invalidateHabit(ctx context.Context, id string, write func() error) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}
	return write()
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string, archived bool) ([]*domain.Habit, error) {
	key := r.cacheKey(userID, archived)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			r.hit()
			return habits, nil
		}

		r.logger.Warn("corrupted cache entry, cleaning up", zap.String("key", key))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("redis read failed", zap.Error(err))
	}
	r.miss()

	habits, err := r.next.ListByUserID(ctx, userID, archived)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Warn("redis set failed", zap.Error(setErr))
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) ListAllByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return r.next.ListAllByUserID(ctx, userID)
}

func (r *CachedHabitRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	return r.next.CountByUserID(ctx, userID)
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	return r.invalidateHabit(ctx, id, func() error {
		return r.next.Delete(ctx, id)
	})
}

func (r *CachedHabitRepository) Reorder(ctx context.Context, userID string, orders map[string]int) error {
	if err := r.next.Reorder(ctx, userID, orders); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return r.invalidateHabit(ctx, id, func() error {
		return r.next.UpdateStreaks(ctx, id, current, longest)
	})
}

// ExpireFreezes can touch any user, so on change it drops every list key.
func (r *CachedHabitRepository) ExpireFreezes(ctx context.Context, now time.Time) (int, error) {
	n, err := r.next.ExpireFreezes(ctx, now)
	if err != nil || n == 0 {
		return n, err
	}

	iter := r.cache.Scan(ctx, 0, "habits:*", 100).Iterator()
	for iter.Next(ctx) {
		if delErr := r.cache.Del(ctx, iter.Val()).Err(); delErr != nil {
			r.logger.Warn("cache invalidation failed", zap.String("key", iter.Val()), zap.Error(delErr))
		}
	}
	if scanErr := iter.Err(); scanErr != nil {
		r.logger.Warn("cache scan failed", zap.Error(scanErr))
	}
	return n, nil
}
