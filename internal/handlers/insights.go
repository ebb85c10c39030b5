package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
)

const (
	defaultCategoryDays = 30
	maxCategoryDays     = 365
)

type InsightsHandler struct {
	Ledger LedgerStore
	now    func() time.Time
}

// NewInsightsHandler создает обработчик аналитики трат.
func NewInsightsHandler(ledger LedgerStore) *InsightsHandler {
	return &InsightsHandler{Ledger: ledger, now: time.Now}
}

type CategorySharesResponse struct {
	Days       int                     `json:"days"`
	Categories []finance.CategoryShare `json:"categories"`
}

// Spending сравнивает траты текущего и прошлого месяца по категориям.
func (h *InsightsHandler) Spending(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	now := h.now()
	since := now.AddDate(0, 0, -finance.InsightsLookbackDays)

	entries, err := h.Ledger.ListDebitsSince(c.Request().Context(), userID, since)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, finance.AggregateCategories(entries, now))
}

// Categories возвращает доли категорий за последние N дней.
func (h *InsightsHandler) Categories(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	days := defaultCategoryDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxCategoryDays {
			return badRequest(c, "invalid days")
		}
		days = parsed
	}

	since := h.now().AddDate(0, 0, -days)
	entries, err := h.Ledger.ListDebitsSince(c.Request().Context(), userID, since)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, CategorySharesResponse{
		Days:       days,
		Categories: finance.CategoryShares(entries),
	})
}
