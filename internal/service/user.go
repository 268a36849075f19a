package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileUpdate carries optional profile changes; nil fields are kept.
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}

// UpdateProfile applies profile changes, rejecting an email already
// owned by another user.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	if fields := validation.Profile(upd.Name, upd.Email); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email != user.Email {
			taken, err := s.users.EmailTaken(ctx, email, userID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if taken {
				return nil, apperr.Conflict("Email is already taken")
			}
		}
		user.Email = email
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflict("Email is already taken")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}

	s.log.Infof("Profile updated: %s", user.Email)
	return user, nil
}

// UserStats builds the account-wide dashboard: all-time overview,
// current-year totals, monthly breakdown, top spending categories and
// budget performance from the cached counters.
func (s *Service) UserStats(ctx context.Context, userID primitive.ObjectID) (*models.UserStats, error) {
	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, time.UTC)

	totalTxns, err := s.txns.CountTransactions(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	allTime, err := s.txns.TotalsByType(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	income, expense := splitTotals(allTime)

	yearly, err := s.txns.TotalsByType(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	yearIncome, yearExpense := splitTotals(yearly)

	monthly, err := s.txns.MonthlyTotals(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	topCategories, err := s.txns.ExpenseTotalsByCategory(ctx, userID, yearStart, yearEnd, 5)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	month, year := int(now.Month()), now.Year()
	activeBudgets, err := s.budgets.CountBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	budgets, err := s.budgets.ListBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	performance := make([]models.BudgetPerformance, 0, len(budgets))
	for _, b := range budgets {
		p := models.BudgetPerformance{Category: b.Category, Limit: b.Limit, Spent: b.Spent}
		if b.Limit > 0 {
			p.Percentage = b.Spent / b.Limit * 100
		}
		performance = append(performance, p)
	}

	return &models.UserStats{
		Overview: models.StatsOverview{
			TotalTransactions: totalTxns,
			TotalIncome:       income.Total,
			TotalExpenses:     expense.Total,
			NetWorth:          income.Total - expense.Total,
		},
		CurrentYear: models.YearStats{
			Income:           yearIncome.Total,
			Expenses:         yearExpense.Total,
			Savings:          yearIncome.Total - yearExpense.Total,
			TransactionCount: yearIncome.Count + yearExpense.Count,
		},
		MonthlyTrends: emptyMonthlyTotals(monthly),
		TopCategories: emptyCategoryTotals(topCategories),
		Budgets: models.BudgetSummary{
			Active:      activeBudgets,
			Performance: performance,
		},
	}, nil
}

// DeleteAccount removes the user and everything it owns: transactions
// first, budgets next, the user record last.
func (s *Service) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.txns.DeleteTransactionsByUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	if err := s.budgets.DeleteBudgetsByUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err)
	}

	s.log.Infof("Account deleted: %s", userID.Hex())
	return nil
}

// Users returns every registered user, for the monthly summary job.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// MonthTotals sums one user's income and expenses for a calendar month,
// for the monthly summary job.
func (s *Service) MonthTotals(ctx context.Context, userID primitive.ObjectID, month, year int) (float64, float64, error) {
	start, end := monthRange(month, year)
	totals, err := s.txns.TotalsByType(ctx, userID, start, end)
	if err != nil {
		return 0, 0, err
	}
	income, expense := splitTotals(totals)
	return income.Total, expense.Total, nil
}

func splitTotals(totals []models.TypeTotal) (income, expense models.TypeTotal) {
	for _, t := range totals {
		switch t.Type {
		case models.TypeIncome:
			income = t
		case models.TypeExpense:
			expense = t
		}
	}
	return income, expense
}
