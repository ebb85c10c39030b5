package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/notifications"
	"example.com/finance-dashboard/backend/internal/repository"
)

const (
	defaultTransactionsLimit = 50
	maxTransactionsLimit     = 500
)

type TransactionHandler struct {
	Ledger   LedgerStore
	Budgets  BudgetStore
	Notifier *notifications.Hub
	now      func() time.Time
}

// NewTransactionHandler создает обработчик выписки.
func NewTransactionHandler(ledger LedgerStore, budgets BudgetStore, notifier *notifications.Hub) *TransactionHandler {
	return &TransactionHandler{Ledger: ledger, Budgets: budgets, Notifier: notifier, now: time.Now}
}

type TransactionRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0,lte=999999999999.99"`
	Type        string  `json:"type" validate:"required,oneof=credit debit"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description" validate:"max=500"`
}

type TransactionResponse struct {
	ID              uuid.UUID        `json:"id"`
	Amount          float64          `json:"amount"`
	AmountFormatted string           `json:"amount_formatted"`
	Type            models.EntryType `json:"type"`
	Category        string           `json:"category"`
	Date            string           `json:"date"`
	Description     string           `json:"description"`
	CreatedAt       time.Time        `json:"created_at"`
}

type TransactionsResponse struct {
	Total        int                   `json:"total"`
	Transactions []TransactionResponse `json:"transactions"`
}

// List возвращает выписку пользователя с фильтрами и пагинацией.
func (h *TransactionHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	limit, offset, err := parsePagination(c, defaultTransactionsLimit, maxTransactionsLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.Limit, filter.Offset = limit, offset

	ctx := c.Request().Context()
	entries, err := h.Ledger.List(ctx, userID, filter)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Ledger.Count(ctx, userID, filter)
	if err != nil {
		return serverError(c)
	}

	response := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, toTransactionResponse(entry))
	}

	return c.JSON(http.StatusOK, TransactionsResponse{Total: total, Transactions: response})
}

// Create добавляет запись выписки вручную и проверяет лимиты бюджетов.
func (h *TransactionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return badRequest(c, "date must be in YYYY-MM-DD format")
	}

	entry, err := h.Ledger.Create(c.Request().Context(), models.LedgerEntry{
		UserID:      userID,
		Amount:      req.Amount,
		Type:        models.EntryType(req.Type),
		Category:    normalizeName(req.Category),
		Date:        date,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid transaction")
		}
		return serverError(c)
	}

	if entry.Type == models.EntryTypeDebit {
		h.notifyBudgetAlerts(c.Request().Context(), userID)
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(entry))
}

// ExportCSV выгружает выписку по тем же фильтрам в CSV.
func (h *TransactionHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entries, err := h.Ledger.List(c.Request().Context(), userID, filter)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	if err := writeTransactionsCSV(&buf, entries); err != nil {
		return serverError(c)
	}

	filename := "transactions-" + h.now().Format(dateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// notifyBudgetAlerts пересчитывает бюджеты текущего месяца и шлет SSE для близких к лимиту.
func (h *TransactionHandler) notifyBudgetAlerts(ctx context.Context, userID uuid.UUID) {
	if h.Notifier == nil || h.Budgets == nil {
		return
	}

	now := h.now()
	budgets, err := h.Budgets.ListByUser(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "budget alert: list budgets", slog.String("error", err.Error()))
		return
	}
	if len(budgets) == 0 {
		return
	}

	entries, err := h.Ledger.ListDebitsSince(ctx, userID, monthStart(now))
	if err != nil {
		slog.WarnContext(ctx, "budget alert: list debits", slog.String("error", err.Error()))
		return
	}

	for _, budget := range budgets {
		progress := finance.EvaluateBudget(budget.LimitAmount, finance.SpentForBudget(budget.Name, entries, now))
		if !progress.IsNearLimit && !progress.IsOverLimit {
			continue
		}

		h.Notifier.NotifyBudgetAlert(userID, notifications.BudgetAlert{
			BudgetID:              budget.ID,
			Name:                  budget.Name,
			Spent:                 progress.Spent,
			LimitAmount:           progress.LimitAmount,
			UtilizationPercentage: progress.UtilizationPercentage,
			IsOverLimit:           progress.IsOverLimit,
			IsNearLimit:           progress.IsNearLimit,
		})
	}
}

func parseTransactionFilter(c echo.Context) (repository.TransactionFilter, error) {
	var filter repository.TransactionFilter

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errInvalidQuery("from")
		}
		filter.From = &from
	}

	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errInvalidQuery("to")
		}
		filter.To = &to
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, errInvalidQuery("to")
	}

	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("type"))); raw != "" {
		entryType := models.EntryType(raw)
		if entryType != models.EntryTypeCredit && entryType != models.EntryTypeDebit {
			return filter, errInvalidQuery("type")
		}
		filter.Type = &entryType
	}

	return filter, nil
}

func writeTransactionsCSV(buf *bytes.Buffer, entries []models.LedgerEntry) error {
	writer := csv.NewWriter(buf)

	if err := writer.Write([]string{"date", "type", "category", "amount", "description"}); err != nil {
		return err
	}

	for _, entry := range entries {
		record := []string{
			entry.Date.Format(dateLayout),
			string(entry.Type),
			entry.CategoryLabel(),
			strconv.FormatFloat(entry.Amount, 'f', 2, 64),
			entry.Description,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func toTransactionResponse(entry models.LedgerEntry) TransactionResponse {
	return TransactionResponse{
		ID:              entry.ID,
		Amount:          entry.Amount,
		AmountFormatted: finance.FormatINR(entry.Amount),
		Type:            entry.Type,
		Category:        entry.CategoryLabel(),
		Date:            entry.Date.Format(dateLayout),
		Description:     entry.Description,
		CreatedAt:       entry.CreatedAt,
	}
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

type queryError string

func (e queryError) Error() string { return "invalid " + string(e) }

func errInvalidQuery(param string) error {
	return queryError(param)
}
