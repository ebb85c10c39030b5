package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/repository"
)

type BudgetHandler struct {
	Budgets BudgetStore
	Ledger  LedgerStore
	now     func() time.Time
}

// NewBudgetHandler создает обработчик бюджетов.
func NewBudgetHandler(budgets BudgetStore, ledger LedgerStore) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets, Ledger: ledger, now: time.Now}
}

type BudgetRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	LimitAmount float64 `json:"limit_amount" validate:"gt=0,lte=999999999999.99"`
	Period      string  `json:"period" validate:"omitempty,oneof=weekly monthly yearly"`
	Color       *string `json:"color"`
}

type BudgetResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Period    models.Frequency       `json:"period"`
	Color     string                 `json:"color"`
	Progress  finance.BudgetProgress `json:"progress"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// List возвращает бюджеты с тратами за текущий месяц.
func (h *BudgetHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	now := h.now()

	budgets, err := h.Budgets.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	entries, err := h.Ledger.ListDebitsSince(ctx, userID, monthStart(now))
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildBudgetResponses(budgets, entries, now))
}

// Create создает бюджет.
func (h *BudgetHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	budget, ok, err := h.bindBudget(c)
	if !ok {
		return err
	}
	budget.UserID = userID

	created, err := h.Budgets.Create(c.Request().Context(), budget)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid budget")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(created, finance.EvaluateBudget(created.LimitAmount, 0)))
}

// Update обновляет бюджет.
func (h *BudgetHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	budgetID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid budget id")
	}

	budget, ok, err := h.bindBudget(c)
	if !ok {
		return err
	}
	budget.ID = budgetID
	budget.UserID = userID

	ctx := c.Request().Context()
	updated, err := h.Budgets.Update(ctx, budget)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "budget not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid budget")
		}
		return serverError(c)
	}

	now := h.now()
	entries, err := h.Ledger.ListDebitsSince(ctx, userID, monthStart(now))
	if err != nil {
		return serverError(c)
	}

	progress := finance.EvaluateBudget(updated.LimitAmount, finance.SpentForBudget(updated.Name, entries, now))
	return c.JSON(http.StatusOK, toBudgetResponse(updated, progress))
}

// Delete удаляет бюджет.
func (h *BudgetHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	budgetID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid budget id")
	}

	if err := h.Budgets.Delete(c.Request().Context(), userID, budgetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "budget not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BudgetHandler) bindBudget(c echo.Context) (models.Budget, bool, error) {
	var req BudgetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return models.Budget{}, false, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Budget{}, false, badRequest(c, "name is required")
	}

	period := models.FrequencyMonthly
	if req.Period != "" {
		period = models.Frequency(req.Period)
	}

	var color string
	if req.Color != nil {
		value, err := validateHexColor(*req.Color)
		if err != nil {
			return models.Budget{}, false, badRequest(c, err.Error())
		}
		color = value
	}

	return models.Budget{
		Name:        name,
		LimitAmount: req.LimitAmount,
		Period:      period,
		Color:       color,
	}, true, nil
}

func buildBudgetResponses(budgets []models.Budget, entries []models.LedgerEntry, now time.Time) []BudgetResponse {
	response := make([]BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		progress := finance.EvaluateBudget(budget.LimitAmount, finance.SpentForBudget(budget.Name, entries, now))
		response = append(response, toBudgetResponse(budget, progress))
	}
	return response
}

func toBudgetResponse(budget models.Budget, progress finance.BudgetProgress) BudgetResponse {
	return BudgetResponse{
		ID:        budget.ID,
		Name:      budget.Name,
		Period:    budget.Period,
		Color:     budget.Color,
		Progress:  progress,
		CreatedAt: budget.CreatedAt,
		UpdatedAt: budget.UpdatedAt,
	}
}
