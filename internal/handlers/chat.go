package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/chat"
	"example.com/finance-dashboard/backend/internal/models"
)

const defaultChatAction = "sendMessage"

type ChatHandler struct {
	Client chat.Client
	Logs   ChatLogStore
	now    func() time.Time
}

// NewChatHandler создает обработчик чата.
func NewChatHandler(client chat.Client, logs ChatLogStore) *ChatHandler {
	return &ChatHandler{Client: client, Logs: logs, now: time.Now}
}

type ChatRequest struct {
	SessionID string `json:"session_id" validate:"max=200"`
	ChatInput string `json:"chat_input" validate:"required,max=4000"`
}

type ChatResponse struct {
	Output    string `json:"output"`
	SessionID string `json:"session_id"`
}

// Send пересылает сообщение в вебхук чат-бота и возвращает его ответ.
func (h *ChatHandler) Send(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChatRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input := strings.TrimSpace(req.ChatInput)
	if input == "" {
		return badRequest(c, "chat_input is required")
	}

	action := strings.TrimSpace(c.QueryParam("action"))
	if action == "" {
		action = defaultChatAction
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = userID.String()
	}

	ctx := c.Request().Context()
	started := h.now()
	output, _, err := h.Client.Ask(ctx, chat.Request{Action: action, SessionID: sessionID, Input: input})
	h.logRequest(ctx, userID, action, sessionID, started, err)

	if err != nil {
		switch {
		case errors.Is(err, chat.ErrTimeout):
			return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "timeout"})
		case errors.Is(err, chat.ErrNotConfigured):
			return serviceUnavailable(c, "chat is not configured")
		}
		slog.WarnContext(ctx, "chat webhook failed", slog.String("action", action), slog.String("error", err.Error()))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "chat service unavailable"})
	}

	return c.JSON(http.StatusOK, ChatResponse{Output: output, SessionID: sessionID})
}

func (h *ChatHandler) logRequest(ctx context.Context, userID uuid.UUID, action, sessionID string, started time.Time, askErr error) {
	if h.Logs == nil {
		return
	}

	entry := models.ChatRequestLog{
		UserID:    userID,
		Action:    action,
		SessionID: sessionID,
		Success:   askErr == nil,
		LatencyMS: int(h.now().Sub(started).Milliseconds()),
	}
	if askErr != nil {
		message := askErr.Error()
		entry.ErrorMessage = &message
	}

	if err := h.Logs.LogRequest(context.WithoutCancel(ctx), entry); err != nil {
		slog.WarnContext(ctx, "chat request not logged", slog.String("error", err.Error()))
	}
}
