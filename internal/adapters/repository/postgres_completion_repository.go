package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aethernova/habits-api/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

const completionColumns = `id, habit_id, user_id, date, notes, completed_at`

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habit_completions (id, habit_id, user_id, date, notes, completed_at)
		VALUES (:id, :habit_id, :user_id, :date, :notes, :completed_at)`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return domain.ErrCompletionExists
		case pgForeignKeyViolation:
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (r *PostgresCompletionRepository) GetByHabitAndDate(ctx context.Context, habitID string, date domain.Date) (*domain.Completion, error) {
	var c domain.Completion
	query := `SELECT ` + completionColumns + ` FROM habit_completions WHERE habit_id = $1 AND date = $2`

	if err := r.db.GetContext(ctx, &c, query, habitID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("get completion failed: %w", err)
	}
	return &c, nil
}

func (r *PostgresCompletionRepository) Update(ctx context.Context, c *domain.Completion) error {
	query := `
		UPDATE habit_completions
		SET notes = :notes
		WHERE habit_id = :habit_id AND date = :date`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update completion failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) Delete(ctx context.Context, habitID string, date domain.Date) error {
	query := `DELETE FROM habit_completions WHERE habit_id = $1 AND date = $2`

	result, err := r.db.ExecContext(ctx, query, habitID, date)
	if err != nil {
		return fmt.Errorf("delete completion failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) ListByHabitID(ctx context.Context, habitID string, limit, offset int) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}

	query := `SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY date DESC
		OFFSET $2`
	args := []any{habitID, max(offset, 0)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	if err := r.db.SelectContext(ctx, &completions, query, args...); err != nil {
		return nil, fmt.Errorf("list completions failed: %w", err)
	}
	return completions, nil
}

func (r *PostgresCompletionRepository) CountByHabitID(ctx context.Context, habitID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM habit_completions WHERE habit_id = $1`, habitID); err != nil {
		return 0, fmt.Errorf("count completions failed: %w", err)
	}
	return n, nil
}

func (r *PostgresCompletionRepository) ListByUserID(ctx context.Context, userID string, from, to domain.Date) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}

	conds := []string{"user_id = $1"}
	args := []any{userID}
	if !from.IsZero() {
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY date DESC`

	if err := r.db.SelectContext(ctx, &completions, query, args...); err != nil {
		return nil, fmt.Errorf("list user completions failed: %w", err)
	}
	return completions, nil
}
