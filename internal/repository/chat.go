package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository создает репозиторий журнала обращений к чат-боту.
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// LogRequest сохраняет запись об обращении к чат-боту.
func (r *ChatRepository) LogRequest(ctx context.Context, log models.ChatRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_requests (user_id, action, session_id, success, error_message, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.UserID,
		log.Action,
		log.SessionID,
		log.Success,
		log.ErrorMessage,
		log.LatencyMS,
	)
	return err
}

// DeleteOlderThan удаляет записи журнала старше before.
func (r *ChatRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM chat_requests
		 WHERE created_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}

	return cmd.RowsAffected(), nil
}
