package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aethernova/habits-api/internal/core/domain"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `
    id, user_id, title, description, category, sort_order, archived,
    is_frozen, frozen_until, freezes_available, current_streak, longest_streak,
    version, created_at, updated_at, deleted_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, title, description, category, sort_order, archived,
            is_frozen, frozen_until, freezes_available, current_streak, longest_streak,
            version, created_at, updated_at
        ) VALUES (
            :id, :user_id, :title, :description, :category, :sort_order, :archived,
            :is_frozen, :frozen_until, :freezes_available, :current_streak, :longest_streak,
            1, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	var h domain.Habit
	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string, archived bool) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND archived = $2 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at ASC`

	habits := []*domain.Habit{}
	if err := r.db.SelectContext(ctx, &habits, query, userID, archived); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *PostgresHabitRepository) ListAllByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at ASC`

	habits := []*domain.Habit{}
	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *PostgresHabitRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	query := `SELECT count(*) FROM habits WHERE user_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            title=$1, description=$2, category=$3, sort_order=$4, archived=$5,
            is_frozen=$6, frozen_until=$7, freezes_available=$8,
            updated_at=NOW(), version = version + 1
        WHERE id=$9 AND version=$10 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Title, h.Description, h.Category, h.Order, h.Archived,
		h.IsFrozen, h.FrozenUntil, h.FreezesAvailable,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	err := row.Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
			var count int
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// Reorder checks ownership of the whole batch and applies it in one transaction.
func (r *PostgresHabitRepository) Reorder(ctx context.Context, userID string, orders map[string]int) (err error) {
	ids := slices.Sorted(maps.Keys(orders))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var owned int
	ownedQuery := `
        SELECT count(*) FROM habits
        WHERE user_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL`
	if err = tx.GetContext(ctx, &owned, ownedQuery, userID, pq.Array(ids)); err != nil {
		return fmt.Errorf("ownership check failed: %w", err)
	}
	if owned != len(ids) {
		err = domain.ErrUnauthorized
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `
        UPDATE habits
        SET sort_order = $1, updated_at = NOW(), version = version + 1
        WHERE id = $2 AND user_id = $3`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err = stmt.ExecContext(ctx, orders[id], id, userID); err != nil {
			return fmt.Errorf("reorder habit %s: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	habits := []*domain.Habit{}
	if err := r.db.SelectContext(ctx, &habits, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return habits, nil
}

// UpdateStreaks only touches the snapshot columns; it does not bump the
// version since clients never edit streaks.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("update streaks failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *PostgresHabitRepository) ExpireFreezes(ctx context.Context, now time.Time) (int, error) {
	query := `
        UPDATE habits
        SET is_frozen = FALSE, frozen_until = NULL, updated_at = NOW(), version = version + 1
        WHERE is_frozen AND frozen_until < $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire freezes failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
