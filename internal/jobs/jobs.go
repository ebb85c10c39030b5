package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// revokedTokenGrace: сколько хранить отозванные refresh-токены для разбора повторного использования.
const revokedTokenGrace = 24 * time.Hour

type TokenPurger interface {
	DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}

type ChatLogPurger interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	TokenPurgeSchedule   string
	ChatLogPurgeSchedule string
	ChatLogRetention     time.Duration
}

// Scheduler запускает периодическое обслуживание базы.
type Scheduler struct {
	cron     *cron.Cron
	tokens   TokenPurger
	chatLogs ChatLogPurger
	cfg      Config
	now      func() time.Time
}

// NewScheduler регистрирует задачи очистки; ошибка возвращается для неверного расписания.
func NewScheduler(cfg Config, tokens TokenPurger, chatLogs ChatLogPurger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		tokens:   tokens,
		chatLogs: chatLogs,
		cfg:      cfg,
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.TokenPurgeSchedule, s.run("purge_refresh_tokens", s.PurgeRefreshTokens)); err != nil {
		return nil, fmt.Errorf("schedule refresh token purge: %w", err)
	}

	if _, err := s.cron.AddFunc(cfg.ChatLogPurgeSchedule, s.run("purge_chat_logs", s.PurgeChatLogs)); err != nil {
		return nil, fmt.Errorf("schedule chat log purge: %w", err)
	}

	return s, nil
}

// Start запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// PurgeRefreshTokens удаляет истекшие и давно отозванные refresh-токены.
func (s *Scheduler) PurgeRefreshTokens(ctx context.Context) (int64, error) {
	now := s.now()
	return s.tokens.DeleteStale(ctx, now, now.Add(-revokedTokenGrace))
}

// PurgeChatLogs удаляет журнал чат-бота старше срока хранения.
func (s *Scheduler) PurgeChatLogs(ctx context.Context) (int64, error) {
	return s.chatLogs.DeleteOlderThan(ctx, s.now().Add(-s.cfg.ChatLogRetention))
}

func (s *Scheduler) run(name string, job func(context.Context) (int64, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		deleted, err := job(ctx)
		if err != nil {
			slog.Error("job failed", slog.String("job", name), slog.String("error", err.Error()))
			return
		}

		slog.Info("job finished",
			slog.String("job", name),
			slog.Int64("deleted", deleted),
			slog.Duration("duration", time.Since(started)),
		)
	}
}
