package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
	"example.com/finance-dashboard/backend/internal/repository"
)

const dashboardRecentTransactions = 5

type DashboardHandler struct {
	Ledger  LedgerStore
	Budgets BudgetStore
	Goals   GoalStore
	Income  IncomeStore
	Reports TaxReportStore
	now     func() time.Time
}

// NewDashboardHandler создает обработчик сводной страницы.
func NewDashboardHandler(ledger LedgerStore, budgets BudgetStore, goals GoalStore, income IncomeStore, reports TaxReportStore) *DashboardHandler {
	return &DashboardHandler{
		Ledger:  ledger,
		Budgets: budgets,
		Goals:   goals,
		Income:  income,
		Reports: reports,
		now:     time.Now,
	}
}

type DashboardResponse struct {
	Budgets            []BudgetResponse         `json:"budgets"`
	Goals              []GoalResponse           `json:"goals"`
	Income             IncomeSummaryResponse    `json:"income"`
	RecentTransactions []TransactionResponse    `json:"recent_transactions"`
	Spending           finance.CategoryInsights `json:"spending"`
	Tax                TaxReportResponse        `json:"tax"`
}

// Get собирает разделы сводки параллельно; упавший раздел остается пустым.
func (h *DashboardHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	now := h.now()

	response := DashboardResponse{
		Budgets:            []BudgetResponse{},
		Goals:              []GoalResponse{},
		Income:             buildIncomeSummary(nil),
		RecentTransactions: []TransactionResponse{},
		Spending:           finance.AggregateCategories(nil, now),
	}

	var g errgroup.Group

	g.Go(func() error {
		budgets, err := h.Budgets.ListByUser(ctx, userID)
		if err != nil {
			logSectionError(ctx, "budgets", err)
			return nil
		}
		entries, err := h.Ledger.ListDebitsSince(ctx, userID, monthStart(now))
		if err != nil {
			logSectionError(ctx, "budgets", err)
			return nil
		}
		response.Budgets = buildBudgetResponses(budgets, entries, now)
		return nil
	})

	g.Go(func() error {
		goals, err := h.Goals.ListByUser(ctx, userID)
		if err != nil {
			logSectionError(ctx, "goals", err)
			return nil
		}
		response.Goals = buildGoalResponses(goals, now)
		return nil
	})

	g.Go(func() error {
		sources, err := h.Income.ListByUser(ctx, userID)
		if err != nil {
			logSectionError(ctx, "income", err)
			return nil
		}
		response.Income = buildIncomeSummary(sources)
		return nil
	})

	g.Go(func() error {
		entries, err := h.Ledger.List(ctx, userID, repository.TransactionFilter{Limit: dashboardRecentTransactions})
		if err != nil {
			logSectionError(ctx, "transactions", err)
			return nil
		}
		recent := make([]TransactionResponse, 0, len(entries))
		for _, entry := range entries {
			recent = append(recent, toTransactionResponse(entry))
		}
		response.RecentTransactions = recent
		return nil
	})

	g.Go(func() error {
		entries, err := h.Ledger.ListDebitsSince(ctx, userID, now.AddDate(0, 0, -finance.InsightsLookbackDays))
		if err != nil {
			logSectionError(ctx, "spending", err)
			return nil
		}
		response.Spending = finance.AggregateCategories(entries, now)
		return nil
	})

	g.Go(func() error {
		report, err := h.loadTaxReport(ctx, userID)
		if err != nil {
			logSectionError(ctx, "tax", err)
			return nil
		}
		response.Tax = report
		return nil
	})

	_ = g.Wait()

	return c.JSON(http.StatusOK, response)
}

func (h *DashboardHandler) loadTaxReport(ctx context.Context, userID uuid.UUID) (TaxReportResponse, error) {
	report, err := h.Reports.Latest(ctx, userID, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TaxReportResponse{}, nil
		}
		return TaxReportResponse{}, err
	}
	return buildTaxReportResponse(report), nil
}

func logSectionError(ctx context.Context, section string, err error) {
	slog.WarnContext(ctx, "dashboard section failed", slog.String("section", section), slog.String("error", err.Error()))
}
