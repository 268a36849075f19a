// Package service holds the business logic: auth, transaction lifecycle
// with budget reconciliation, budget backfill and progress, and user
// account management.
package service

import (
	"context"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the persistence surface for users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TransactionStore is the persistence surface for transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindTransactionByID(ctx context.Context, userID, id primitive.ObjectID) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteTransactionsByUser(ctx context.Context, userID primitive.ObjectID) error
	ListTransactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter, skip, limit int64) ([]models.Transaction, int64, error)
	CountTransactions(ctx context.Context, userID primitive.ObjectID) (int64, error)
	TotalsByType(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.TypeTotal, error)
	ExpenseTotalsByCategory(ctx context.Context, userID primitive.ObjectID, start, end time.Time, max int64) ([]models.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.MonthlyTotal, error)
	SumExpenses(ctx context.Context, userID primitive.ObjectID, category string, start, end time.Time) (float64, int64, error)
}

// BudgetStore is the persistence surface for budgets.
type BudgetStore interface {
	CreateBudget(ctx context.Context, budget *models.Budget) error
	FindBudget(ctx context.Context, userID primitive.ObjectID, category string, month, year int) (*models.Budget, error)
	FindBudgetByID(ctx context.Context, userID, id primitive.ObjectID) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID primitive.ObjectID, month, year int) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteBudgetsByUser(ctx context.Context, userID primitive.ObjectID) error
	AdjustBudgetSpent(ctx context.Context, userID primitive.ObjectID, category string, month, year int, delta float64) error
	CountBudgets(ctx context.Context, userID primitive.ObjectID, month, year int) (int64, error)
}

// Notifier sends budget alert emails. A nil Notifier disables alerts.
type Notifier interface {
	SendBudgetAlert(to, name, category string, spent, limit float64, percentage, month, year int) error
}

// Service handles business logic
type Service struct {
	users    UserStore
	txns     TransactionStore
	budgets  BudgetStore
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. notifier may be nil.
func NewService(users UserStore, txns TransactionStore, budgets BudgetStore, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		users:    users,
		txns:     txns,
		budgets:  budgets,
		notifier: notifier,
		log:      log,
		config:   cfg,
	}
}

// monthRange returns the first and last instant of a calendar month.
func monthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}
