package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

const goalColumns = "id, user_id, name, target_amount, saved_amount, target_date, color, created_at, updated_at"

type GoalRepository struct {
	db *pgxpool.Pool
}

// NewGoalRepository создает репозиторий целей накопления.
func NewGoalRepository(db *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create создает цель.
func (r *GoalRepository) Create(ctx context.Context, goal models.Goal) (models.Goal, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO goals (user_id, name, target_amount, saved_amount, target_date, color)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+goalColumns,
		goal.UserID, goal.Name, goal.TargetAmount, goal.SavedAmount, goal.TargetDate, goal.Color,
	)

	created, err := scanGoal(row)
	if err != nil {
		return created, mapPgError(err)
	}
	return created, nil
}

// Update обновляет параметры цели; накопленная сумма меняется только через SetSaved.
func (r *GoalRepository) Update(ctx context.Context, goal models.Goal) (models.Goal, error) {
	return r.updateOne(ctx,
		`UPDATE goals
		 SET name = $3,
		     target_amount = $4,
		     target_date = $5,
		     color = $6,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+goalColumns,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.TargetDate, goal.Color,
	)
}

// SetSaved записывает новую накопленную сумму цели.
func (r *GoalRepository) SetSaved(ctx context.Context, userID, goalID uuid.UUID, savedAmount float64) (models.Goal, error) {
	return r.updateOne(ctx,
		`UPDATE goals
		 SET saved_amount = $3,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+goalColumns,
		goalID, userID, savedAmount,
	)
}

// Delete удаляет цель пользователя.
func (r *GoalRepository) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM goals
		 WHERE id = $1 AND user_id = $2`,
		goalID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID возвращает цель пользователя по идентификатору.
func (r *GoalRepository) GetByID(ctx context.Context, userID, goalID uuid.UUID) (models.Goal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+goalColumns+`
		 FROM goals
		 WHERE id = $1 AND user_id = $2`,
		goalID, userID,
	)

	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal, ErrNotFound
		}
		return goal, err
	}
	return goal, nil
}

// ListByUser возвращает цели пользователя в порядке создания.
func (r *GoalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+goalColumns+`
		 FROM goals
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *GoalRepository) updateOne(ctx context.Context, query string, args ...any) (models.Goal, error) {
	goal, err := scanGoal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal, ErrNotFound
		}
		return goal, mapPgError(err)
	}
	return goal, nil
}

func scanGoal(row pgx.Row) (models.Goal, error) {
	var goal models.Goal
	err := row.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &goal.SavedAmount, &goal.TargetDate, &goal.Color, &goal.CreatedAt, &goal.UpdatedAt)
	return goal, err
}
