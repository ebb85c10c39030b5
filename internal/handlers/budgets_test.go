package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-dashboard/backend/internal/models"
)

// TestBudgetListComputesProgress проверяет расчет трат по вхождению имени бюджета в категорию.
func TestBudgetListComputesProgress(t *testing.T) {
	userID := uuid.New()
	ledger := &fakeLedger{entries: []models.LedgerEntry{
		debit(userID, 300, "Food delivery", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		debit(userID, 200, "FOOD", time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)),
		debit(userID, 500, "Rent", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
		debit(userID, 900, "Food", time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)),
	}}
	budgets := &fakeBudgets{budgets: []models.Budget{
		{ID: uuid.New(), UserID: userID, Name: "food", LimitAmount: 1000, Period: models.FrequencyMonthly},
		{ID: uuid.New(), UserID: userID, Name: "Rent", LimitAmount: 400, Period: models.FrequencyMonthly},
	}}

	h := NewBudgetHandler(budgets, ledger)
	h.now = fixedNow

	c, rec := newRequestContext(http.MethodGet, "/api/v1/budgets", nil, userID)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)

	food := body[0].Progress
	assert.Equal(t, 500.0, food.Spent)
	assert.Equal(t, 50.0, food.UtilizationPercentage)
	assert.Equal(t, 500.0, food.RemainingAmount)
	assert.False(t, food.IsNearLimit)

	rent := body[1].Progress
	assert.True(t, rent.IsOverLimit)
	assert.Equal(t, 100.0, rent.UtilizationPercentage)
	assert.Equal(t, 0.0, rent.RemainingAmount)
}

// TestBudgetCreateDefaultsAndValidation проверяет период по умолчанию и валидацию цвета.
func TestBudgetCreateDefaultsAndValidation(t *testing.T) {
	userID := uuid.New()
	budgets := &fakeBudgets{}
	h := NewBudgetHandler(budgets, &fakeLedger{})

	c, rec := newRequestContext(http.MethodPost, "/api/v1/budgets",
		jsonBody(`{"name":"  Groceries ","limit_amount":5000,"color":"#22AA55"}`), userID)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Groceries", created.Name)
	assert.Equal(t, models.FrequencyMonthly, created.Period)
	assert.Equal(t, 5000.0, created.Progress.RemainingAmount)

	c, rec = newRequestContext(http.MethodPost, "/api/v1/budgets",
		jsonBody(`{"name":"Fuel","limit_amount":100,"color":"green"}`), userID)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRequestContext(http.MethodPost, "/api/v1/budgets",
		jsonBody(`{"name":"Fuel","limit_amount":-5}`), userID)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestBudgetDeleteNotFound проверяет 404 для чужого бюджета.
func TestBudgetDeleteNotFound(t *testing.T) {
	owner := uuid.New()
	budget := models.Budget{ID: uuid.New(), UserID: owner, Name: "Food", LimitAmount: 100}
	h := NewBudgetHandler(&fakeBudgets{budgets: []models.Budget{budget}}, &fakeLedger{})

	c, rec := newRequestContext(http.MethodDelete, "/api/v1/budgets/"+budget.ID.String(), nil, uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(budget.ID.String())
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newRequestContext(http.MethodDelete, "/api/v1/budgets/"+budget.ID.String(), nil, owner)
	c.SetParamNames("id")
	c.SetParamValues(budget.ID.String())
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
