package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

type TaxReportRepository struct {
	db *pgxpool.Pool
}

// NewTaxReportRepository создает репозиторий налоговых отчетов.
func NewTaxReportRepository(db *pgxpool.Pool) *TaxReportRepository {
	return &TaxReportRepository{db: db}
}

// Latest возвращает последний отчет пользователя; пустой financialYear означает любой год.
func (r *TaxReportRepository) Latest(ctx context.Context, userID uuid.UUID, financialYear string) (models.TaxReport, error) {
	var report models.TaxReport

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, financial_year, total_income, taxable_amount, deduction_total,
		        compliance_score, missing_documents, created_at
		 FROM tax_reports
		 WHERE user_id = $1 AND ($2 = '' OR financial_year = $2)
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, financialYear,
	).Scan(&report.ID, &report.UserID, &report.FinancialYear, &report.TotalIncome, &report.TaxableAmount, &report.DeductionTotal,
		&report.ComplianceScore, &report.MissingDocuments, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report, ErrNotFound
		}
		return report, err
	}

	if report.MissingDocuments == nil {
		report.MissingDocuments = []string{}
	}

	return report, nil
}
