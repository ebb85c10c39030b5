package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/finance-dashboard/backend/internal/models"
)

// weeksPerMonth: приближение 4.33, а не 52/12.
const weeksPerMonth = 4.33

var (
	needsShare   = decimal.NewFromFloat(0.50)
	wantsShare   = decimal.NewFromFloat(0.30)
	savingsShare = decimal.NewFromFloat(0.20)
)

// IncomeLine: источник дохода вместе с месячным эквивалентом.
type IncomeLine struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Amount            float64          `json:"amount"`
	Frequency         models.Frequency `json:"frequency"`
	MonthlyEquivalent float64          `json:"monthly_equivalent"`
}

// Allocation: распределение 50/30/20; каждая часть округляется независимо.
type Allocation struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

// IncomeSummary содержит источники, общий месячный доход и распределение 50/30/20.
type IncomeSummary struct {
	Sources      []IncomeLine `json:"sources"`
	TotalMonthly float64      `json:"total_monthly"`
	Allocation   Allocation   `json:"allocation"`
}

// MonthlyEquivalent приводит доход к месячному значению.
func MonthlyEquivalent(source models.IncomeSource) float64 {
	switch source.Frequency {
	case models.FrequencyWeekly:
		return source.Amount * weeksPerMonth
	case models.FrequencyYearly:
		return source.Amount / 12
	default:
		return source.Amount
	}
}

// NormalizeIncome суммирует месячные эквиваленты, сохраняя порядок источников для отображения.
func NormalizeIncome(sources []models.IncomeSource) IncomeSummary {
	summary := IncomeSummary{Sources: make([]IncomeLine, 0, len(sources))}

	for _, source := range sources {
		monthly := MonthlyEquivalent(source)
		summary.TotalMonthly += monthly
		summary.Sources = append(summary.Sources, IncomeLine{
			ID:                source.ID,
			Name:              source.Name,
			Amount:            source.Amount,
			Frequency:         source.Frequency,
			MonthlyEquivalent: monthly,
		})
	}

	summary.Allocation = Allocate(summary.TotalMonthly)
	return summary
}

// Allocate делит месячный доход на потребности, желания и сбережения.
func Allocate(totalMonthly float64) Allocation {
	total := decimal.NewFromFloat(totalMonthly)
	return Allocation{
		Needs:   total.Mul(needsShare).Round(0).InexactFloat64(),
		Wants:   total.Mul(wantsShare).Round(0).InexactFloat64(),
		Savings: total.Mul(savingsShare).Round(0).InexactFloat64(),
	}
}
