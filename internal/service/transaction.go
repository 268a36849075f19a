package service

import (
	"context"
	"errors"
	"math"
	"time"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination bounds
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// TransactionInput is a full transaction payload.
type TransactionInput struct {
	Type        string
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// TransactionUpdate carries optional field changes; nil fields are kept.
type TransactionUpdate struct {
	Type        *string
	Amount      *float64
	Category    *string
	Description *string
	Date        *time.Time
}

// CreateTransaction validates and persists a new transaction. For an
// expense, the matching budget's cached spent counter is incremented
// after the insert; the two writes are not atomic, and the budget
// progress path recomputes from source transactions to absorb drift.
func (s *Service) CreateTransaction(ctx context.Context, userID primitive.ObjectID, in TransactionInput) (*models.Transaction, error) {
	if fields := validation.Transaction(in.Type, in.Amount, in.Category, in.Description, in.Date); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	txn := &models.Transaction{
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date.UTC(),
	}

	if err := s.txns.CreateTransaction(ctx, txn); err != nil {
		return nil, apperr.Internal(err)
	}

	// Insert first, then adjust the counter. A failure here leaves the
	// transaction in place.
	if err := s.applySpentDelta(ctx, userID, txn.Type, txn.Category, txn.Date, txn.Amount); err != nil {
		return nil, apperr.Internal(err)
	}
	s.maybeSendBudgetAlert(userID, txn)

	return txn, nil
}

// GetTransaction returns one owned transaction.
func (s *Service) GetTransaction(ctx context.Context, userID primitive.ObjectID, id string) (*models.Transaction, error) {
	txnID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Transaction not found")
	}
	txn, err := s.txns.FindTransactionByID(ctx, userID, txnID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Transaction not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return txn, nil
}

// UpdateTransaction applies partial changes and reconciles budgets by
// removing the old contribution and adding the new one. This covers
// type flips, category moves, amount changes and month changes alike;
// when old and new resolve to the same budget the net effect is the
// amount delta.
func (s *Service) UpdateTransaction(ctx context.Context, userID primitive.ObjectID, id string, upd TransactionUpdate) (*models.Transaction, error) {
	txn, err := s.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	old := *txn

	if upd.Type != nil {
		txn.Type = *upd.Type
	}
	if upd.Amount != nil {
		txn.Amount = *upd.Amount
	}
	if upd.Category != nil {
		txn.Category = *upd.Category
	}
	if upd.Description != nil {
		txn.Description = *upd.Description
	}
	if upd.Date != nil {
		txn.Date = upd.Date.UTC()
	}

	if fields := validateTransactionUpdate(txn, upd); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	if err := s.txns.UpdateTransaction(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Transaction not found")
		}
		return nil, apperr.Internal(err)
	}

	// Remove the old contribution, add the new one.
	if err := s.applySpentDelta(ctx, userID, old.Type, old.Category, old.Date, -old.Amount); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.applySpentDelta(ctx, userID, txn.Type, txn.Category, txn.Date, txn.Amount); err != nil {
		return nil, apperr.Internal(err)
	}
	s.maybeSendBudgetAlert(userID, txn)

	return txn, nil
}

// DeleteTransaction removes an owned transaction and backs its amount
// out of the matching budget.
func (s *Service) DeleteTransaction(ctx context.Context, userID primitive.ObjectID, id string) error {
	txn, err := s.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.applySpentDelta(ctx, userID, txn.Type, txn.Category, txn.Date, -txn.Amount); err != nil {
		return apperr.Internal(err)
	}

	if err := s.txns.DeleteTransaction(ctx, userID, txn.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Transaction not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// ListTransactions returns one page of filtered transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter, page, limit int) ([]models.Transaction, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	skip := int64(page-1) * int64(limit)

	txns, total, err := s.txns.ListTransactions(ctx, userID, f, skip, int64(limit))
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal(err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}

	pagination := models.Pagination{
		Current: page,
		Pages:   int(math.Ceil(float64(total) / float64(limit))),
		Total:   total,
	}
	return txns, pagination, nil
}

// TransactionStats aggregates the dashboard numbers: current-month
// totals by type, current-month expense totals by category, and a
// trailing six month trend by (year, month, type).
func (s *Service) TransactionStats(ctx context.Context, userID primitive.ObjectID) (*models.TransactionStats, error) {
	now := time.Now().UTC()
	monthStart, monthEnd := monthRange(int(now.Month()), now.Year())

	monthly, err := s.txns.TotalsByType(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	categories, err := s.txns.ExpenseTotalsByCategory(ctx, userID, monthStart, monthEnd, 0)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	trends, err := s.txns.MonthlyTotals(ctx, userID, now.AddDate(0, -6, 0), now)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.TransactionStats{
		Monthly:    emptyTypeTotals(monthly),
		Categories: emptyCategoryTotals(categories),
		Trends:     emptyMonthlyTotals(trends),
	}, nil
}

// applySpentDelta adjusts the cached spent counter of the budget
// covering the transaction's period. Income transactions and periods
// without a budget are no-ops.
func (s *Service) applySpentDelta(ctx context.Context, userID primitive.ObjectID, txnType, category string, date time.Time, delta float64) error {
	if txnType != models.TypeExpense {
		return nil
	}
	return s.budgets.AdjustBudgetSpent(ctx, userID, category, int(date.Month()), date.Year(), delta)
}

// maybeSendBudgetAlert emails the owner when an expense pushes its
// budget past the warning threshold. Failures are logged, never
// surfaced.
func (s *Service) maybeSendBudgetAlert(userID primitive.ObjectID, txn *models.Transaction) {
	if s.notifier == nil || txn.Type != models.TypeExpense {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		month, year := int(txn.Date.Month()), txn.Date.Year()
		budget, err := s.budgets.FindBudget(ctx, userID, txn.Category, month, year)
		if err != nil || budget.Limit <= 0 {
			return
		}
		percentage := int(math.Round(budget.Spent / budget.Limit * 100))
		if percentage < models.BudgetWarningThreshold {
			return
		}

		user, err := s.users.FindUserByID(ctx, userID)
		if err != nil {
			return
		}
		if err := s.notifier.SendBudgetAlert(user.Email, user.Name, budget.Category, budget.Spent, budget.Limit, percentage, month, year); err != nil {
			s.log.Errorf("Failed to send budget alert to %s: %v", user.Email, err)
		}
	}()
}

// validateTransactionUpdate checks only the fields the caller supplied.
func validateTransactionUpdate(txn *models.Transaction, upd TransactionUpdate) []apperr.FieldError {
	fields := validation.Transaction(txn.Type, txn.Amount, txn.Category, txn.Description, txn.Date)
	if len(fields) == 0 {
		return nil
	}

	provided := map[string]bool{
		"type":        upd.Type != nil,
		"amount":      upd.Amount != nil,
		"category":    upd.Category != nil,
		"description": upd.Description != nil,
		"date":        upd.Date != nil,
	}
	var out []apperr.FieldError
	for _, f := range fields {
		if provided[f.Field] {
			out = append(out, f)
		}
	}
	return out
}

func emptyTypeTotals(v []models.TypeTotal) []models.TypeTotal {
	if v == nil {
		return []models.TypeTotal{}
	}
	return v
}

func emptyCategoryTotals(v []models.CategoryTotal) []models.CategoryTotal {
	if v == nil {
		return []models.CategoryTotal{}
	}
	return v
}

func emptyMonthlyTotals(v []models.MonthlyTotal) []models.MonthlyTotal {
	if v == nil {
		return []models.MonthlyTotal{}
	}
	return v
}
