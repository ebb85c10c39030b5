package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

const incomeColumns = "id, user_id, name, amount, frequency, position, created_at, updated_at"

type IncomeRepository struct {
	db *pgxpool.Pool
}

// NewIncomeRepository создает репозиторий источников дохода.
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create добавляет источник дохода в конец списка пользователя.
func (r *IncomeRepository) Create(ctx context.Context, source models.IncomeSource) (models.IncomeSource, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO income_sources (user_id, name, amount, frequency)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+incomeColumns,
		source.UserID, source.Name, source.Amount, source.Frequency,
	)

	created, err := scanIncomeSource(row)
	if err != nil {
		return created, mapPgError(err)
	}
	return created, nil
}

// Update обновляет источник дохода, сохраняя его позицию.
func (r *IncomeRepository) Update(ctx context.Context, source models.IncomeSource) (models.IncomeSource, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE income_sources
		 SET name = $3,
		     amount = $4,
		     frequency = $5,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+incomeColumns,
		source.ID, source.UserID, source.Name, source.Amount, source.Frequency,
	)

	updated, err := scanIncomeSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, mapPgError(err)
	}
	return updated, nil
}

// Delete удаляет источник дохода пользователя.
func (r *IncomeRepository) Delete(ctx context.Context, userID, sourceID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM income_sources
		 WHERE id = $1 AND user_id = $2`,
		sourceID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser возвращает источники дохода в порядке добавления.
func (r *IncomeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+incomeColumns+`
		 FROM income_sources
		 WHERE user_id = $1
		 ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := make([]models.IncomeSource, 0)
	for rows.Next() {
		source, err := scanIncomeSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

func scanIncomeSource(row pgx.Row) (models.IncomeSource, error) {
	var source models.IncomeSource
	err := row.Scan(&source.ID, &source.UserID, &source.Name, &source.Amount, &source.Frequency, &source.Position, &source.CreatedAt, &source.UpdatedAt)
	return source, err
}
