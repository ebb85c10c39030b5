package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/repository"
)

type LedgerStore interface {
	Create(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.LedgerEntry, error)
	Count(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) (int, error)
	ListDebitsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.LedgerEntry, error)
}

type BudgetStore interface {
	Create(ctx context.Context, budget models.Budget) (models.Budget, error)
	Update(ctx context.Context, budget models.Budget) (models.Budget, error)
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Budget, error)
}

type GoalStore interface {
	Create(ctx context.Context, goal models.Goal) (models.Goal, error)
	Update(ctx context.Context, goal models.Goal) (models.Goal, error)
	SetSaved(ctx context.Context, userID, goalID uuid.UUID, savedAmount float64) (models.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
	GetByID(ctx context.Context, userID, goalID uuid.UUID) (models.Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
}

type IncomeStore interface {
	Create(ctx context.Context, source models.IncomeSource) (models.IncomeSource, error)
	Update(ctx context.Context, source models.IncomeSource) (models.IncomeSource, error)
	Delete(ctx context.Context, userID, sourceID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeSource, error)
}

type TaxReportStore interface {
	Latest(ctx context.Context, userID uuid.UUID, financialYear string) (models.TaxReport, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc models.Document) (models.Document, error)
	GetByID(ctx context.Context, userID, documentID uuid.UUID) (models.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error)
	Rename(ctx context.Context, userID, documentID uuid.UUID, fileName string) (models.Document, error)
	Delete(ctx context.Context, userID, documentID uuid.UUID) error
}

type ChatLogStore interface {
	LogRequest(ctx context.Context, log models.ChatRequestLog) error
}
