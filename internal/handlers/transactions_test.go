package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/notifications"
	"example.com/finance-dashboard/backend/internal/repository"
)

// TestTransactionCreateSendsBudgetAlert проверяет SSE-уведомление, когда расход приближает бюджет к лимиту.
func TestTransactionCreateSendsBudgetAlert(t *testing.T) {
	userID := uuid.New()
	ledger := &fakeLedger{entries: []models.LedgerEntry{
		debit(userID, 800, "Food", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}}
	budgets := &fakeBudgets{budgets: []models.Budget{
		{ID: uuid.New(), UserID: userID, Name: "Food", LimitAmount: 1000},
		{ID: uuid.New(), UserID: userID, Name: "Travel", LimitAmount: 1000},
	}}
	hub := notifications.NewHub()
	events, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	h := NewTransactionHandler(ledger, budgets, hub)
	h.now = fixedNow

	c, rec := newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":100,"type":"debit","category":"Food","date":"2024-03-14"}`), userID)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Food", created.Category)
	assert.Equal(t, "₹100", created.AmountFormatted)

	select {
	case event := <-events:
		require.Equal(t, notifications.EventBudgetAlert, event.Type)
		alert, ok := event.Data.(notifications.BudgetAlert)
		require.True(t, ok)
		assert.Equal(t, "Food", alert.Name)
		assert.Equal(t, 900.0, alert.Spent)
		assert.True(t, alert.IsNearLimit)
		assert.False(t, alert.IsOverLimit)
	default:
		t.Fatal("expected budget alert")
	}

	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestTransactionCreateCreditSkipsAlerts проверяет, что доход не пересчитывает бюджеты.
func TestTransactionCreateCreditSkipsAlerts(t *testing.T) {
	userID := uuid.New()
	ledger := &fakeLedger{entries: []models.LedgerEntry{
		debit(userID, 1200, "Food", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}}
	budgets := &fakeBudgets{budgets: []models.Budget{{ID: uuid.New(), UserID: userID, Name: "Food", LimitAmount: 1000}}}
	hub := notifications.NewHub()
	events, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	h := NewTransactionHandler(ledger, budgets, hub)
	h.now = fixedNow

	c, rec := newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":5000,"type":"credit","date":"2024-03-14"}`), userID)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestTransactionCreateValidation проверяет ответ 422 с именем поля.
func TestTransactionCreateValidation(t *testing.T) {
	h := NewTransactionHandler(&fakeLedger{}, &fakeBudgets{}, nil)

	c, rec := newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":0,"type":"debit","date":"2024-03-14"}`), uuid.New())
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "amount", body.Field)

	c, rec = newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":10,"type":"debit","date":"14.03.2024"}`), uuid.New())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestTransactionCreateAmountLimit проверяет верхнюю границу суммы и отказ хранилища.
func TestTransactionCreateAmountLimit(t *testing.T) {
	ledger := &fakeLedger{}
	h := NewTransactionHandler(ledger, &fakeBudgets{}, nil)

	c, rec := newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":1e13,"type":"debit","date":"2024-03-14"}`), uuid.New())
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "amount", body.Field)
	assert.Empty(t, ledger.entries)

	ledger.err = repository.ErrInvalid
	c, rec = newRequestContext(http.MethodPost, "/api/v1/transactions",
		jsonBody(`{"amount":10,"type":"debit","date":"2024-03-14"}`), uuid.New())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestTransactionListFilters проверяет фильтр по типу и пагинацию.
func TestTransactionListFilters(t *testing.T) {
	userID := uuid.New()
	ledger := &fakeLedger{entries: []models.LedgerEntry{
		debit(userID, 100, "Food", time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)),
		{ID: uuid.New(), UserID: userID, Amount: 5000, Type: models.EntryTypeCredit, Date: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)},
		debit(userID, 200, "Rent", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}}
	h := NewTransactionHandler(ledger, &fakeBudgets{}, nil)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/transactions?type=debit&limit=1", nil, userID)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body TransactionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "Food", body.Transactions[0].Category)

	c, rec = newRequestContext(http.MethodGet, "/api/v1/transactions?type=refund", nil, userID)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRequestContext(http.MethodGet, "/api/v1/transactions?from=2024-03-10&to=2024-03-01", nil, userID)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestTransactionExportCSV проверяет заголовки и строки выгрузки.
func TestTransactionExportCSV(t *testing.T) {
	userID := uuid.New()
	ledger := &fakeLedger{entries: []models.LedgerEntry{
		debit(userID, 800, "Food", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
		{ID: uuid.New(), UserID: userID, Amount: 5000, Type: models.EntryTypeCredit, Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Description: "Salary, March"},
	}}
	h := NewTransactionHandler(ledger, &fakeBudgets{}, nil)
	h.now = fixedNow

	c, rec := newRequestContext(http.MethodGet, "/api/v1/transactions/export.csv", nil, userID)
	require.NoError(t, h.ExportCSV(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transactions-2024-03-15.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,type,category,amount,description", lines[0])
	assert.Equal(t, "2024-03-10,debit,Food,800.00,", lines[1])
	assert.Equal(t, `2024-03-01,credit,,5000.00,"Salary, March"`, lines[2])
}
