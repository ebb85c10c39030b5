package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/chat"
	"example.com/finance-dashboard/backend/internal/config"
	"example.com/finance-dashboard/backend/internal/events"
	"example.com/finance-dashboard/backend/internal/handlers"
	"example.com/finance-dashboard/backend/internal/notifications"
	"example.com/finance-dashboard/backend/internal/repository"
	"example.com/finance-dashboard/backend/internal/storage"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, publisher events.Publisher) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	taxRepo := repository.NewTaxReportRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()

	blobStore := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.APIKey, cfg.Storage.Timeout)
	chatClient := chat.NewWebhookClient(cfg.Chat.WebhookURL, cfg.Chat.Timeout)

	h := routeHandlers{
		auth:          handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager),
		transactions:  handlers.NewTransactionHandler(transactionRepo, budgetRepo, notificationHub),
		budgets:       handlers.NewBudgetHandler(budgetRepo, transactionRepo),
		goals:         handlers.NewGoalHandler(goalRepo, notificationHub),
		income:        handlers.NewIncomeHandler(incomeRepo),
		insights:      handlers.NewInsightsHandler(transactionRepo),
		tax:           handlers.NewTaxHandler(taxRepo),
		documents:     handlers.NewDocumentHandler(documentRepo, blobStore, publisher, notificationHub, cfg.Documents.MaxBytes),
		chat:          handlers.NewChatHandler(chatClient, chatRepo),
		dashboard:     handlers.NewDashboardHandler(transactionRepo, budgetRepo, goalRepo, incomeRepo, taxRepo),
		notifications: handlers.NewNotificationHandler(notificationHub),
		admin:         handlers.NewAdminHandler(adminRepo),
		ready:         handlers.Ready(db),
	}

	registerRoutes(e, h, routeMiddleware{
		auth:          auth.JWTMiddleware(tokenManager),
		stream:        auth.JWTMiddleware(tokenManager, auth.AllowQueryToken()),
		admin:         handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		authRateLimit: rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		chatRateLimit: rateLimiter(cfg.Chat.RateLimitPerMinute, cfg.Chat.RateLimitBurst),
		uploadLimit:   middleware.BodyLimit(uploadBodyLimit(cfg.Documents.MaxBytes)),
	})

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

// uploadBodyLimit оставляет запас на заголовки multipart поверх размера файла.
func uploadBodyLimit(maxBytes int64) string {
	const overheadKB = 64
	return strconv.FormatInt(maxBytes/1024+overheadKB, 10) + "K"
}
