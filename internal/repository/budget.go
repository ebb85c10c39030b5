package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

const budgetColumns = "id, user_id, name, limit_amount, period, color, created_at, updated_at"

type BudgetRepository struct {
	db *pgxpool.Pool
}

// NewBudgetRepository создает репозиторий бюджетов.
func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create создает бюджет.
func (r *BudgetRepository) Create(ctx context.Context, budget models.Budget) (models.Budget, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO budgets (user_id, name, limit_amount, period, color)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+budgetColumns,
		budget.UserID, budget.Name, budget.LimitAmount, budget.Period, budget.Color,
	)

	created, err := scanBudget(row)
	if err != nil {
		return created, mapPgError(err)
	}
	return created, nil
}

// Update обновляет бюджет пользователя.
func (r *BudgetRepository) Update(ctx context.Context, budget models.Budget) (models.Budget, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE budgets
		 SET name = $3,
		     limit_amount = $4,
		     period = $5,
		     color = $6,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+budgetColumns,
		budget.ID, budget.UserID, budget.Name, budget.LimitAmount, budget.Period, budget.Color,
	)

	updated, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, mapPgError(err)
	}
	return updated, nil
}

// Delete удаляет бюджет пользователя.
func (r *BudgetRepository) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM budgets
		 WHERE id = $1 AND user_id = $2`,
		budgetID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID возвращает бюджет пользователя по идентификатору.
func (r *BudgetRepository) GetByID(ctx context.Context, userID, budgetID uuid.UUID) (models.Budget, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE id = $1 AND user_id = $2`,
		budgetID, userID,
	)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return budget, ErrNotFound
		}
		return budget, err
	}
	return budget, nil
}

// ListByUser возвращает бюджеты пользователя в порядке создания.
func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]models.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return budgets, nil
}

func scanBudget(row pgx.Row) (models.Budget, error) {
	var budget models.Budget
	err := row.Scan(&budget.ID, &budget.UserID, &budget.Name, &budget.LimitAmount, &budget.Period, &budget.Color, &budget.CreatedAt, &budget.UpdatedAt)
	return budget, err
}
