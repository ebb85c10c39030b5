package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AdminUser struct {
	ID        uuid.UUID
	Email     string
	FullName  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ChatRequestFilter struct {
	UserID  *uuid.UUID
	Success *bool
	Action  *string
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type UsageStats struct {
	Users             int
	Transactions      int
	Documents         int
	ChatRequests      int
	ChatSuccess       int
	ChatFail          int
	ChatRequestsByDay []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает список пользователей с пагинацией.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, email, full_name, created_at, updated_at
		 FROM users
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AdminUser, 0)
	for rows.Next() {
		var user AdminUser
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListChatRequests возвращает журнал обращений к чат-боту с фильтрацией.
func (r *AdminRepository) ListChatRequests(ctx context.Context, filter ChatRequestFilter, limit, offset int) ([]models.ChatRequestLog, error) {
	where, args := buildChatRequestWhere(filter)

	limitParam := len(args) + 1
	offsetParam := len(args) + 2
	query := fmt.Sprintf(
		"SELECT id, user_id, action, session_id, success, error_message, latency_ms, created_at FROM chat_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, limitParam, offsetParam,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.ChatRequestLog, 0)
	for rows.Next() {
		var record models.ChatRequestLog
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Action,
			&record.SessionID,
			&record.Success,
			&record.ErrorMessage,
			&record.LatencyMS,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// CountChatRequests возвращает количество обращений по фильтру.
func (r *AdminRepository) CountChatRequests(ctx context.Context, filter ChatRequestFilter) (int, error) {
	where, args := buildChatRequestWhere(filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM chat_requests%s", where)
	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users),
		        (SELECT COUNT(*) FROM transactions),
		        (SELECT COUNT(*) FROM documents)`,
	).Scan(&stats.Users, &stats.Transactions, &stats.Documents); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM chat_requests`,
	).Scan(&stats.ChatRequests, &stats.ChatSuccess, &stats.ChatFail); err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM chat_requests
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.ChatRequestsByDay = make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return stats, err
		}
		stats.ChatRequestsByDay = append(stats.ChatRequestsByDay, row)
	}

	if err := rows.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

func buildChatRequestWhere(filter ChatRequestFilter) (string, []any) {
	clauses := make([]string, 0)
	args := make([]any, 0)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}

	if filter.Action != nil {
		args = append(args, *filter.Action)
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
