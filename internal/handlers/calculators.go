package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/finance"
)

// EMIRequest: параметры кредита для расчета платежа.
type EMIRequest struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
	IncludeSchedule   bool    `json:"include_schedule"`
}

// EMIResponse дополняет расчет отформатированными суммами и графиком.
type EMIResponse struct {
	finance.Amortization
	InstallmentFormatted   string                `json:"installment_formatted"`
	TotalPaymentFormatted  string                `json:"total_payment_formatted"`
	TotalInterestFormatted string                `json:"total_interest_formatted"`
	Schedule               []finance.ScheduleRow `json:"schedule,omitempty"`
}

// CalculateEMI считает аннуитетный платеж; запрос не требует состояния.
func CalculateEMI(c echo.Context) error {
	var req EMIRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	input := finance.LoanInput{
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		TermYears:         req.TermYears,
	}

	result, err := finance.Amortize(input)
	if err != nil {
		return validationFailed(c, err)
	}

	response := EMIResponse{
		Amortization:           result,
		InstallmentFormatted:   finance.FormatINR(result.Installment),
		TotalPaymentFormatted:  finance.FormatINR(result.TotalPayment),
		TotalInterestFormatted: finance.FormatINR(result.TotalInterest),
	}

	if req.IncludeSchedule {
		schedule, err := finance.Schedule(input)
		if err != nil {
			return validationFailed(c, err)
		}
		response.Schedule = schedule
	}

	return c.JSON(http.StatusOK, response)
}
