package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/repository"
)

type IncomeHandler struct {
	Sources IncomeStore
}

// NewIncomeHandler создает обработчик источников дохода.
func NewIncomeHandler(sources IncomeStore) *IncomeHandler {
	return &IncomeHandler{Sources: sources}
}

type IncomeRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Amount    float64 `json:"amount" validate:"gt=0,lte=999999999999.99"`
	Frequency string  `json:"frequency" validate:"required,oneof=weekly monthly yearly"`
}

type IncomeSummaryResponse struct {
	finance.IncomeSummary
	TotalMonthlyFormatted string `json:"total_monthly_formatted"`
}

// List возвращает источники дохода в порядке добавления.
func (h *IncomeHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sources, err := h.Sources.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, sources)
}

// Summary возвращает месячный доход и распределение 50/30/20.
func (h *IncomeHandler) Summary(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sources, err := h.Sources.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildIncomeSummary(sources))
}

// Create добавляет источник дохода.
func (h *IncomeHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	source, ok, err := bindIncomeSource(c)
	if !ok {
		return err
	}
	source.UserID = userID

	created, err := h.Sources.Create(c.Request().Context(), source)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid income source")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update обновляет источник дохода.
func (h *IncomeHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sourceID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid income source id")
	}

	source, ok, err := bindIncomeSource(c)
	if !ok {
		return err
	}
	source.ID = sourceID
	source.UserID = userID

	updated, err := h.Sources.Update(c.Request().Context(), source)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "income source not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid income source")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет источник дохода.
func (h *IncomeHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sourceID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid income source id")
	}

	if err := h.Sources.Delete(c.Request().Context(), userID, sourceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindIncomeSource(c echo.Context) (models.IncomeSource, bool, error) {
	var req IncomeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return models.IncomeSource{}, false, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.IncomeSource{}, false, badRequest(c, "name is required")
	}

	return models.IncomeSource{
		Name:      name,
		Amount:    req.Amount,
		Frequency: models.Frequency(req.Frequency),
	}, true, nil
}

func buildIncomeSummary(sources []models.IncomeSource) IncomeSummaryResponse {
	summary := finance.NormalizeIncome(sources)
	return IncomeSummaryResponse{
		IncomeSummary:         summary,
		TotalMonthlyFormatted: finance.FormatINR(summary.TotalMonthly),
	}
}
