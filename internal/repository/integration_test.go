//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"example.com/finance-dashboard/backend/internal/database"
	"example.com/finance-dashboard/backend/internal/models"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("finance_dashboard"),
		postgres.WithUsername("finance"),
		postgres.WithPassword("finance"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, email string) models.User {
	t.Helper()
	user, err := NewUserRepository(pool).Create(context.Background(), email, "hash", nil)
	require.NoError(t, err)
	return user
}

// TestRepositoriesAgainstPostgres проверяет репозитории на настоящей базе.
func TestRepositoriesAgainstPostgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	t.Run("users conflict on duplicate email", func(t *testing.T) {
		createUser(t, pool, "dup@example.com")
		_, err := NewUserRepository(pool).Create(ctx, "dup@example.com", "hash", nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("ledger is scoped and ordered", func(t *testing.T) {
		owner := createUser(t, pool, "ledger@example.com")
		other := createUser(t, pool, "other@example.com")
		repo := NewTransactionRepository(pool)

		food := "Food"
		days := []time.Time{
			time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		}
		for _, day := range days {
			_, err := repo.Create(ctx, models.LedgerEntry{UserID: owner.ID, Amount: 120.5, Type: models.EntryTypeDebit, Category: &food, Date: day})
			require.NoError(t, err)
		}
		_, err := repo.Create(ctx, models.LedgerEntry{UserID: owner.ID, Amount: 5000, Type: models.EntryTypeCredit, Date: days[0]})
		require.NoError(t, err)
		_, err = repo.Create(ctx, models.LedgerEntry{UserID: other.ID, Amount: 10, Type: models.EntryTypeDebit, Date: days[0]})
		require.NoError(t, err)

		debits, err := repo.ListDebitsSince(ctx, owner.ID, days[0])
		require.NoError(t, err)
		require.Len(t, debits, 2)
		assert.True(t, debits[0].Date.After(debits[1].Date))
		assert.Equal(t, 120.5, debits[0].Amount)

		count, err := repo.Count(ctx, owner.ID, TransactionFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		_, err = repo.Create(ctx, models.LedgerEntry{UserID: owner.ID, Amount: -1, Type: models.EntryTypeDebit, Date: days[0]})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("goal saved amount update", func(t *testing.T) {
		owner := createUser(t, pool, "goal@example.com")
		repo := NewGoalRepository(pool)

		goal, err := repo.Create(ctx, models.Goal{UserID: owner.ID, Name: "Car", TargetAmount: 500000, TargetDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)

		updated, err := repo.SetSaved(ctx, owner.ID, goal.ID, 1500)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, updated.SavedAmount)

		_, err = repo.SetSaved(ctx, uuid.New(), goal.ID, 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("income keeps insertion order", func(t *testing.T) {
		owner := createUser(t, pool, "income@example.com")
		repo := NewIncomeRepository(pool)

		for _, name := range []string{"Salary", "Freelance", "Rent"} {
			_, err := repo.Create(ctx, models.IncomeSource{UserID: owner.ID, Name: name, Amount: 1000, Frequency: models.FrequencyMonthly})
			require.NoError(t, err)
		}

		sources, err := repo.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, sources, 3)
		assert.Equal(t, "Salary", sources[0].Name)
		assert.Equal(t, "Rent", sources[2].Name)
	})

	t.Run("missing tax report", func(t *testing.T) {
		owner := createUser(t, pool, "tax@example.com")
		_, err := NewTaxReportRepository(pool).Latest(ctx, owner.ID, "2024-25")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("documents rename and delete", func(t *testing.T) {
		owner := createUser(t, pool, "docs@example.com")
		repo := NewDocumentRepository(pool)

		doc, err := repo.Create(ctx, models.Document{UserID: owner.ID, FileName: "form16.pdf", FilePath: owner.ID.String() + "/1_form16.pdf", PublicURL: "http://blob/form16.pdf", FileSize: 10, ContentType: "application/pdf"})
		require.NoError(t, err)

		renamed, err := repo.Rename(ctx, owner.ID, doc.ID, "Form 16.pdf")
		require.NoError(t, err)
		assert.Equal(t, doc.FilePath, renamed.FilePath)

		require.NoError(t, repo.Delete(ctx, owner.ID, doc.ID))
		assert.ErrorIs(t, repo.Delete(ctx, owner.ID, doc.ID), ErrNotFound)
	})

	t.Run("maintenance purges", func(t *testing.T) {
		owner := createUser(t, pool, "jobs@example.com")
		tokens := NewRefreshTokenRepository(pool)
		require.NoError(t, tokens.Create(ctx, models.RefreshToken{ID: uuid.New(), UserID: owner.ID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour)}))
		require.NoError(t, tokens.Create(ctx, models.RefreshToken{ID: uuid.New(), UserID: owner.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}))

		deleted, err := tokens.DeleteStale(ctx, time.Now(), time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		chats := NewChatRepository(pool)
		require.NoError(t, chats.LogRequest(ctx, models.ChatRequestLog{UserID: owner.ID, Action: "ask", SessionID: "s1", Success: true, LatencyMS: 12}))
		deleted, err = chats.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, deleted, int64(1))
	})
}
