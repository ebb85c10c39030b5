package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-dashboard/backend/internal/models"
)

// TestMonthlyEquivalent проверяет приведение частоты дохода к месяцу.
func TestMonthlyEquivalent(t *testing.T) {
	assert.Equal(t, 50000.0, MonthlyEquivalent(models.IncomeSource{Amount: 50000, Frequency: models.FrequencyMonthly}))
	assert.InDelta(t, 4330.0, MonthlyEquivalent(models.IncomeSource{Amount: 1000, Frequency: models.FrequencyWeekly}), 1e-9)
	assert.Equal(t, 10000.0, MonthlyEquivalent(models.IncomeSource{Amount: 120000, Frequency: models.FrequencyYearly}))
}

// TestNormalizeIncomeYearlyRoundTrip проверяет, что годовой доход восстанавливается умножением на 12.
func TestNormalizeIncomeYearlyRoundTrip(t *testing.T) {
	for _, amount := range []float64{100000, 750000, 999999, 54321.5} {
		summary := NormalizeIncome([]models.IncomeSource{{Amount: amount, Frequency: models.FrequencyYearly}})
		assert.Equal(t, amount, summary.TotalMonthly*12)
	}
}

// TestNormalizeIncomeKeepsOrderAndAllocates проверяет порядок источников и распределение 50/30/20.
func TestNormalizeIncomeKeepsOrderAndAllocates(t *testing.T) {
	sources := []models.IncomeSource{
		{ID: uuid.New(), Name: "Salary", Amount: 60000, Frequency: models.FrequencyMonthly},
		{ID: uuid.New(), Name: "Tutoring", Amount: 1500, Frequency: models.FrequencyWeekly},
		{ID: uuid.New(), Name: "Bonus", Amount: 90000, Frequency: models.FrequencyYearly},
	}

	summary := NormalizeIncome(sources)
	require.Len(t, summary.Sources, 3)
	assert.Equal(t, "Salary", summary.Sources[0].Name)
	assert.Equal(t, "Tutoring", summary.Sources[1].Name)
	assert.Equal(t, "Bonus", summary.Sources[2].Name)

	// 60000 + 6495 + 7500
	assert.InDelta(t, 73995.0, summary.TotalMonthly, 1e-6)
	assert.Equal(t, 36998.0, summary.Allocation.Needs)
	assert.Equal(t, 22199.0, summary.Allocation.Wants)
	assert.Equal(t, 14799.0, summary.Allocation.Savings)
}

// TestNormalizeIncomeEmpty проверяет пустой список источников.
func TestNormalizeIncomeEmpty(t *testing.T) {
	summary := NormalizeIncome(nil)
	assert.Empty(t, summary.Sources)
	assert.Equal(t, 0.0, summary.TotalMonthly)
	assert.Equal(t, Allocation{}, summary.Allocation)
}
