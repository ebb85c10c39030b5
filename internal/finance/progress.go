package finance

import (
	"math"
	"strings"
	"time"

	"example.com/finance-dashboard/backend/internal/models"
)

const (
	nearLimitPercentage = 85.0
	daysPerGoalMonth    = 30
)

// BudgetProgress: состояние бюджета за текущий месяц.
type BudgetProgress struct {
	Spent                 float64 `json:"spent"`
	LimitAmount           float64 `json:"limit_amount"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
	RemainingAmount       float64 `json:"remaining_amount"`
	IsOverLimit           bool    `json:"is_over_limit"`
	IsNearLimit           bool    `json:"is_near_limit"`
}

// GoalProgress: прогресс цели и ежемесячный взнос, нужный до срока.
type GoalProgress struct {
	ProgressPercentage float64  `json:"progress_percentage"`
	RemainingAmount    float64  `json:"remaining_amount"`
	DaysRemaining      int      `json:"days_remaining"`
	MonthsRemaining    int      `json:"months_remaining"`
	IsComplete         bool     `json:"is_complete"`
	MonthlyRequired    *float64 `json:"monthly_required,omitempty"`
}

// SpentForBudget суммирует расходы текущего месяца, чья категория содержит имя бюджета без учета регистра.
func SpentForBudget(budgetName string, entries []models.LedgerEntry, now time.Time) float64 {
	needle := strings.ToLower(strings.TrimSpace(budgetName))
	if needle == "" {
		return 0
	}

	var spent float64
	for _, entry := range entries {
		if entry.Type != models.EntryTypeDebit {
			continue
		}
		if entry.Date.Year() != now.Year() || entry.Date.Month() != now.Month() {
			continue
		}
		if !strings.Contains(strings.ToLower(entry.CategoryLabel()), needle) {
			continue
		}
		spent += math.Abs(entry.Amount)
	}

	return spent
}

// EvaluateBudget считает использование лимита. Процент и остаток ограничены для отображения,
// статус перерасхода вычисляется по неограниченным значениям.
func EvaluateBudget(limitAmount, spent float64) BudgetProgress {
	progress := BudgetProgress{
		Spent:           spent,
		LimitAmount:     limitAmount,
		RemainingAmount: math.Max(limitAmount-spent, 0),
		IsOverLimit:     spent >= limitAmount,
	}

	if limitAmount <= 0 {
		if progress.IsOverLimit {
			progress.UtilizationPercentage = 100
		}
		return progress
	}

	utilization := spent / limitAmount * 100
	progress.UtilizationPercentage = math.Min(utilization, 100)
	progress.IsNearLimit = !progress.IsOverLimit && utilization >= nearLimitPercentage
	return progress
}

// EvaluateGoal считает прогресс цели и требуемый ежемесячный взнос.
// Месяц приближенно равен 30 дням; просроченная цель требует внести весь остаток сразу.
func EvaluateGoal(targetAmount, savedAmount float64, targetDate, now time.Time) GoalProgress {
	progress := GoalProgress{
		RemainingAmount: math.Max(targetAmount-savedAmount, 0),
	}

	if targetAmount > 0 {
		progress.ProgressPercentage = math.Min(savedAmount/targetAmount*100, 100)
	} else {
		progress.ProgressPercentage = 100
	}

	days := math.Ceil(targetDate.Sub(now).Hours() / 24)
	progress.DaysRemaining = int(days)
	progress.MonthsRemaining = int(math.Floor(days / daysPerGoalMonth))
	progress.IsComplete = progress.ProgressPercentage >= 100

	if progress.IsComplete {
		return progress
	}

	required := targetAmount - savedAmount
	if progress.MonthsRemaining > 0 {
		required /= float64(progress.MonthsRemaining)
	}
	progress.MonthlyRequired = &required

	return progress
}

// AddFunds увеличивает накопленную сумму цели; неположительный взнос отклоняется.
func AddFunds(savedAmount, addedAmount float64) (float64, error) {
	if math.IsNaN(addedAmount) || math.IsInf(addedAmount, 0) {
		return savedAmount, invalid("amount", "must be a finite number")
	}
	if addedAmount <= 0 {
		return savedAmount, invalid("amount", "must be greater than 0")
	}
	if addedAmount > MaxAmount || savedAmount+addedAmount > MaxAmount {
		return savedAmount, invalid("amount", "exceeds maximum amount")
	}
	return savedAmount + addedAmount, nil
}
