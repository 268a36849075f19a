package service_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeStore is an in-memory implementation of the three store
// interfaces, mirroring the repository's query semantics.
type fakeStore struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*models.User
	txns    map[primitive.ObjectID]*models.Transaction
	budgets map[primitive.ObjectID]*models.Budget
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[primitive.ObjectID]*models.User),
		txns:    make(map[primitive.ObjectID]*models.Transaction),
		budgets: make(map[primitive.ObjectID]*models.Budget),
	}
}

func newTestService(t *testing.T) (*service.Service, *fakeStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpire: time.Hour}
	f := newFakeStore()
	return service.NewService(f, f, f, nil, logger, cfg), f
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// ---- UserStore ----

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return duplicateKeyErr()
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) EmailTaken(_ context.Context, email string, except primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, u := range f.users {
		if u.Email == user.Email && u.ID != user.ID {
			return duplicateKeyErr()
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

// ---- TransactionStore ----

func (f *fakeStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn.ID = primitive.NewObjectID()
	cp := *txn
	f.txns[txn.ID] = &cp
	return nil
}

func (f *fakeStore) FindTransactionByID(_ context.Context, userID, id primitive.ObjectID) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[txn.ID]
	if !ok || t.UserID != txn.UserID {
		return repository.ErrNotFound
	}
	cp := *txn
	f.txns[txn.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.txns, id)
	return nil
}

func (f *fakeStore) DeleteTransactionsByUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.txns {
		if t.UserID == userID {
			delete(f.txns, id)
		}
	}
	return nil
}

func (f *fakeStore) matchTransactions(userID primitive.ObjectID, filter models.TransactionFilter) []models.Transaction {
	var out []models.Transaction
	for _, t := range f.txns {
		if t.UserID != userID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.StartDate != nil && filter.EndDate != nil {
			if t.Date.Before(*filter.StartDate) || t.Date.After(*filter.EndDate) {
				continue
			}
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *t)
	}
	return out
}

func (f *fakeStore) ListTransactions(_ context.Context, userID primitive.ObjectID, filter models.TransactionFilter, skip, limit int64) ([]models.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := f.matchTransactions(userID, filter)
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := int64(len(matched))
	if skip >= total {
		return nil, total, nil
	}
	matched = matched[skip:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeStore) CountTransactions(_ context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matchTransactions(userID, models.TransactionFilter{}))), nil
}

func inRange(date, start, end time.Time) bool {
	if start.IsZero() {
		return true
	}
	return !date.Before(start) && !date.After(end)
}

func (f *fakeStore) TotalsByType(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.TypeTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byType := make(map[string]*models.TypeTotal)
	for _, t := range f.txns {
		if t.UserID != userID || !inRange(t.Date, start, end) {
			continue
		}
		tt, ok := byType[t.Type]
		if !ok {
			tt = &models.TypeTotal{Type: t.Type}
			byType[t.Type] = tt
		}
		tt.Total += t.Amount
		tt.Count++
	}
	var out []models.TypeTotal
	for _, tt := range byType {
		out = append(out, *tt)
	}
	return out, nil
}

func (f *fakeStore) ExpenseTotalsByCategory(_ context.Context, userID primitive.ObjectID, start, end time.Time, max int64) ([]models.CategoryTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCategory := make(map[string]*models.CategoryTotal)
	for _, t := range f.txns {
		if t.UserID != userID || t.Type != models.TypeExpense || !inRange(t.Date, start, end) {
			continue
		}
		ct, ok := byCategory[t.Category]
		if !ok {
			ct = &models.CategoryTotal{Category: t.Category}
			byCategory[t.Category] = ct
		}
		ct.Total += t.Amount
		ct.Count++
	}
	var out []models.CategoryTotal
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if max > 0 && int64(len(out)) > max {
		out = out[:max]
	}
	return out, nil
}

func (f *fakeStore) MonthlyTotals(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.MonthlyTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type key struct {
		year, month int
		typ         string
	}
	byMonth := make(map[key]float64)
	for _, t := range f.txns {
		if t.UserID != userID || !inRange(t.Date, start, end) {
			continue
		}
		byMonth[key{t.Date.Year(), int(t.Date.Month()), t.Type}] += t.Amount
	}
	var out []models.MonthlyTotal
	for k, total := range byMonth {
		out = append(out, models.MonthlyTotal{Year: k.year, Month: k.month, Type: k.typ, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (f *fakeStore) SumExpenses(_ context.Context, userID primitive.ObjectID, category string, start, end time.Time) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	var count int64
	for _, t := range f.txns {
		if t.UserID != userID || t.Type != models.TypeExpense || t.Category != category {
			continue
		}
		if !inRange(t.Date, start, end) {
			continue
		}
		total += t.Amount
		count++
	}
	return total, count, nil
}

// ---- BudgetStore ----

func (f *fakeStore) findBudgetLocked(userID primitive.ObjectID, category string, month, year int) *models.Budget {
	for _, b := range f.budgets {
		if b.UserID == userID && b.Category == category && b.Month == month && b.Year == year {
			return b
		}
	}
	return nil
}

func (f *fakeStore) CreateBudget(_ context.Context, budget *models.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findBudgetLocked(budget.UserID, budget.Category, budget.Month, budget.Year) != nil {
		return duplicateKeyErr()
	}
	budget.ID = primitive.NewObjectID()
	cp := *budget
	f.budgets[budget.ID] = &cp
	return nil
}

func (f *fakeStore) FindBudget(_ context.Context, userID primitive.ObjectID, category string, month, year int) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.findBudgetLocked(userID, category, month, year); b != nil {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindBudgetByID(_ context.Context, userID, id primitive.ObjectID) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID primitive.ObjectID, month, year int) ([]models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Budget
	for _, b := range f.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeStore) UpdateBudget(_ context.Context, budget *models.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[budget.ID]
	if !ok || b.UserID != budget.UserID {
		return repository.ErrNotFound
	}
	if existing := f.findBudgetLocked(budget.UserID, budget.Category, budget.Month, budget.Year); existing != nil && existing.ID != budget.ID {
		return duplicateKeyErr()
	}
	cp := *budget
	f.budgets[budget.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, userID, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.budgets, id)
	return nil
}

func (f *fakeStore) DeleteBudgetsByUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, b := range f.budgets {
		if b.UserID == userID {
			delete(f.budgets, id)
		}
	}
	return nil
}

func (f *fakeStore) AdjustBudgetSpent(_ context.Context, userID primitive.ObjectID, category string, month, year int, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.findBudgetLocked(userID, category, month, year); b != nil {
		b.Spent += delta
	}
	return nil
}

func (f *fakeStore) CountBudgets(_ context.Context, userID primitive.ObjectID, month, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			n++
		}
	}
	return n, nil
}

// setBudgetSpent corrupts the cached counter directly, simulating drift.
func (f *fakeStore) setBudgetSpent(id primitive.ObjectID, spent float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets[id].Spent = spent
}

// setBudgetLimit bypasses validation, for limit edge cases.
func (f *fakeStore) setBudgetLimit(id primitive.ObjectID, limit float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets[id].Limit = limit
}
