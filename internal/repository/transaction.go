package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

const transactionColumns = "id, user_id, amount, type, category, date, description, created_at"

type TransactionRepository struct {
	db *pgxpool.Pool
}

// TransactionFilter ограничивает выборку выписки; нулевые поля не фильтруют.
type TransactionFilter struct {
	From   *time.Time
	To     *time.Time
	Type   *models.EntryType
	Limit  int
	Offset int
}

// NewTransactionRepository создает репозиторий записей выписки.
func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create сохраняет запись выписки, введенную вручную.
func (r *TransactionRepository) Create(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO transactions (user_id, amount, type, category, date, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+transactionColumns,
		entry.UserID, entry.Amount, entry.Type, entry.Category, entry.Date, entry.Description,
	)
	created, err := scanLedgerEntry(row)
	if err != nil {
		return created, mapPgError(err)
	}

	return created, nil
}

// List возвращает записи пользователя, новые первыми.
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.LedgerEntry, error) {
	where, args := buildTransactionWhere(userID, filter)

	query := "SELECT " + transactionColumns + " FROM transactions" + where + " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return r.query(ctx, query, args...)
}

// Count возвращает количество записей по фильтру без учета пагинации.
func (r *TransactionRepository) Count(ctx context.Context, userID uuid.UUID, filter TransactionFilter) (int, error) {
	where, args := buildTransactionWhere(userID, filter)

	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListDebitsSince возвращает расходы начиная с даты since включительно.
func (r *TransactionRepository) ListDebitsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.LedgerEntry, error) {
	debit := models.EntryTypeDebit
	return r.List(ctx, userID, TransactionFilter{From: &since, Type: &debit})
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func scanLedgerEntry(row pgx.Row) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := row.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.Category, &entry.Date, &entry.Description, &entry.CreatedAt)
	return entry, err
}

func buildTransactionWhere(userID uuid.UUID, filter TransactionFilter) (string, []any) {
	args := []any{userID}
	clauses := []string{"user_id = $1"}

	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}

	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
