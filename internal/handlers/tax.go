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

type TaxHandler struct {
	Reports TaxReportStore
}

// NewTaxHandler создает обработчик налогового отчета.
func NewTaxHandler(reports TaxReportStore) *TaxHandler {
	return &TaxHandler{Reports: reports}
}

type TaxReportResponse struct {
	Report                *models.TaxReport `json:"report"`
	EstimatedTax          float64           `json:"estimated_tax"`
	EstimatedTaxFormatted string            `json:"estimated_tax_formatted"`
}

// Report возвращает последний налоговый отчет и оценку налога по шкале.
func (h *TaxHandler) Report(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	year := strings.TrimSpace(c.QueryParam("financial_year"))
	report, err := h.Reports.Latest(c.Request().Context(), userID, year)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, TaxReportResponse{})
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildTaxReportResponse(report))
}

func buildTaxReportResponse(report models.TaxReport) TaxReportResponse {
	estimated := finance.EstimateTax(report.TaxableAmount)
	return TaxReportResponse{
		Report:                &report,
		EstimatedTax:          estimated,
		EstimatedTaxFormatted: finance.FormatINR(estimated),
	}
}
