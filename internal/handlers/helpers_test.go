package handlers

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/chat"
	"example.com/finance-dashboard/backend/internal/events"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/repository"
	"example.com/finance-dashboard/backend/internal/storage"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type testValidator struct {
	validate *validator.Validate
}

func (v testValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func newTestEcho() *echo.Echo {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	e := echo.New()
	e.Validator = testValidator{validate: v}
	return e
}

// newRequestContext собирает контекст запроса с авторизованным пользователем.
func newRequestContext(method, target string, body io.Reader, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)
	c.Set(auth.ContextUserIDKey, userID)
	return c, rec
}

func jsonBody(payload string) io.Reader {
	return strings.NewReader(payload)
}

func ptr[T any](value T) *T {
	return &value
}

func debit(userID uuid.UUID, amount float64, category string, date time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Type:     models.EntryTypeDebit,
		Category: ptr(category),
		Date:     date,
	}
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
	err     error
}

func (f *fakeLedger) Create(_ context.Context, entry models.LedgerEntry) (models.LedgerEntry, error) {
	if f.err != nil {
		return models.LedgerEntry{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = testNow
	f.entries = append([]models.LedgerEntry{entry}, f.entries...)
	return entry, nil
}

func (f *fakeLedger) List(_ context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.LedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]models.LedgerEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		if entry.UserID != userID {
			continue
		}
		if filter.Type != nil && entry.Type != *filter.Type {
			continue
		}
		if filter.From != nil && entry.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Date.After(*filter.To) {
			continue
		}
		result = append(result, entry)
	}

	if filter.Offset > len(result) {
		return []models.LedgerEntry{}, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *fakeLedger) Count(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	entries, err := f.List(ctx, userID, filter)
	return len(entries), err
}

func (f *fakeLedger) ListDebitsSince(_ context.Context, userID uuid.UUID, since time.Time) ([]models.LedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]models.LedgerEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Type == models.EntryTypeDebit && !entry.Date.Before(since) {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeBudgets struct {
	budgets []models.Budget
	err     error
}

func (f *fakeBudgets) Create(_ context.Context, budget models.Budget) (models.Budget, error) {
	if f.err != nil {
		return models.Budget{}, f.err
	}
	budget.ID = uuid.New()
	f.budgets = append(f.budgets, budget)
	return budget, nil
}

func (f *fakeBudgets) Update(_ context.Context, budget models.Budget) (models.Budget, error) {
	for i := range f.budgets {
		if f.budgets[i].ID == budget.ID && f.budgets[i].UserID == budget.UserID {
			f.budgets[i] = budget
			return budget, nil
		}
	}
	return models.Budget{}, repository.ErrNotFound
}

func (f *fakeBudgets) Delete(_ context.Context, userID, budgetID uuid.UUID) error {
	for i := range f.budgets {
		if f.budgets[i].ID == budgetID && f.budgets[i].UserID == userID {
			f.budgets = append(f.budgets[:i], f.budgets[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBudgets) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Budget, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]models.Budget, 0, len(f.budgets))
	for _, budget := range f.budgets {
		if budget.UserID == userID {
			result = append(result, budget)
		}
	}
	return result, nil
}

type fakeGoals struct {
	goals     map[uuid.UUID]models.Goal
	setCalled int
}

func newFakeGoals(goals ...models.Goal) *fakeGoals {
	f := &fakeGoals{goals: make(map[uuid.UUID]models.Goal)}
	for _, goal := range goals {
		f.goals[goal.ID] = goal
	}
	return f
}

func (f *fakeGoals) Create(_ context.Context, goal models.Goal) (models.Goal, error) {
	goal.ID = uuid.New()
	f.goals[goal.ID] = goal
	return goal, nil
}

func (f *fakeGoals) Update(_ context.Context, goal models.Goal) (models.Goal, error) {
	existing, ok := f.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return models.Goal{}, repository.ErrNotFound
	}
	f.goals[goal.ID] = goal
	return goal, nil
}

func (f *fakeGoals) SetSaved(_ context.Context, userID, goalID uuid.UUID, savedAmount float64) (models.Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok || goal.UserID != userID {
		return models.Goal{}, repository.ErrNotFound
	}
	f.setCalled++
	goal.SavedAmount = savedAmount
	f.goals[goalID] = goal
	return goal, nil
}

func (f *fakeGoals) Delete(_ context.Context, userID, goalID uuid.UUID) error {
	goal, ok := f.goals[goalID]
	if !ok || goal.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.goals, goalID)
	return nil
}

func (f *fakeGoals) GetByID(_ context.Context, userID, goalID uuid.UUID) (models.Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok || goal.UserID != userID {
		return models.Goal{}, repository.ErrNotFound
	}
	return goal, nil
}

func (f *fakeGoals) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Goal, error) {
	result := make([]models.Goal, 0, len(f.goals))
	for _, goal := range f.goals {
		if goal.UserID == userID {
			result = append(result, goal)
		}
	}
	return result, nil
}

type fakeIncome struct {
	sources []models.IncomeSource
	err     error
}

func (f *fakeIncome) Create(_ context.Context, source models.IncomeSource) (models.IncomeSource, error) {
	source.ID = uuid.New()
	source.Position = int64(len(f.sources) + 1)
	f.sources = append(f.sources, source)
	return source, nil
}

func (f *fakeIncome) Update(_ context.Context, source models.IncomeSource) (models.IncomeSource, error) {
	for i := range f.sources {
		if f.sources[i].ID == source.ID {
			f.sources[i] = source
			return source, nil
		}
	}
	return models.IncomeSource{}, repository.ErrNotFound
}

func (f *fakeIncome) Delete(_ context.Context, _, sourceID uuid.UUID) error {
	for i := range f.sources {
		if f.sources[i].ID == sourceID {
			f.sources = append(f.sources[:i], f.sources[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeIncome) ListByUser(_ context.Context, _ uuid.UUID) ([]models.IncomeSource, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sources, nil
}

type fakeReports struct {
	report *models.TaxReport
	err    error
}

func (f *fakeReports) Latest(_ context.Context, _ uuid.UUID, _ string) (models.TaxReport, error) {
	if f.err != nil {
		return models.TaxReport{}, f.err
	}
	if f.report == nil {
		return models.TaxReport{}, repository.ErrNotFound
	}
	return *f.report, nil
}

type fakeDocuments struct {
	docs      map[uuid.UUID]models.Document
	createErr error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[uuid.UUID]models.Document)}
}

func (f *fakeDocuments) Create(_ context.Context, doc models.Document) (models.Document, error) {
	if f.createErr != nil {
		return models.Document{}, f.createErr
	}
	doc.ID = uuid.New()
	doc.UploadedAt = testNow
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocuments) GetByID(_ context.Context, userID, documentID uuid.UUID) (models.Document, error) {
	doc, ok := f.docs[documentID]
	if !ok || doc.UserID != userID {
		return models.Document{}, repository.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocuments) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Document, error) {
	result := make([]models.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		if doc.UserID == userID {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (f *fakeDocuments) Rename(_ context.Context, userID, documentID uuid.UUID, fileName string) (models.Document, error) {
	doc, ok := f.docs[documentID]
	if !ok || doc.UserID != userID {
		return models.Document{}, repository.ErrNotFound
	}
	doc.FileName = fileName
	f.docs[documentID] = doc
	return doc, nil
}

func (f *fakeDocuments) Delete(_ context.Context, userID, documentID uuid.UUID) error {
	doc, ok := f.docs[documentID]
	if !ok || doc.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.docs, documentID)
	return nil
}

type fakeBlobs struct {
	objects   map[string][]byte
	removed   []string
	uploadErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(_ context.Context, path, _ string, size int64, body io.Reader) (storage.Object, error) {
	if f.uploadErr != nil {
		return storage.Object{}, f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	f.objects[path] = data
	return storage.Object{Path: path, PublicURL: "https://blobs.test/" + path, Size: size}, nil
}

func (f *fakeBlobs) Remove(_ context.Context, path string) error {
	if _, ok := f.objects[path]; !ok {
		return storage.ErrNotFound
	}
	delete(f.objects, path)
	f.removed = append(f.removed, path)
	return nil
}

type fakePublisher struct {
	events []events.DocumentEvent
}

func (f *fakePublisher) PublishDocument(_ context.Context, event events.DocumentEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeChat struct {
	reply string
	err   error
	last  chat.Request
}

func (f *fakeChat) Ask(_ context.Context, req chat.Request) (string, []byte, error) {
	f.last = req
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, []byte(f.reply), nil
}

type fakeChatLogs struct {
	logs []models.ChatRequestLog
}

func (f *fakeChatLogs) LogRequest(_ context.Context, log models.ChatRequestLog) error {
	f.logs = append(f.logs, log)
	return nil
}

var errStoreDown = errors.New("store is down")
