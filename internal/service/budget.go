package service

import (
	"context"
	"errors"
	"math"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BudgetInput is a full budget payload.
type BudgetInput struct {
	Category string
	Limit    float64
	Month    int
	Year     int
}

// BudgetUpdate carries optional field changes; nil fields are kept.
type BudgetUpdate struct {
	Category *string
	Limit    *float64
	Month    *int
	Year     *int
}

// CreateBudget creates a budget for one (category, month, year) period.
// The cached spent counter is backfilled from expense transactions
// already recorded in the period, so creation order does not matter.
func (s *Service) CreateBudget(ctx context.Context, userID primitive.ObjectID, in BudgetInput) (*models.Budget, error) {
	if fields := validation.Budget(in.Category, in.Limit, in.Month, in.Year); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	if _, err := s.budgets.FindBudget(ctx, userID, in.Category, in.Month, in.Year); err == nil {
		return nil, apperr.Conflict("Budget already exists for this category and month")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	spent, _, err := s.spentInPeriod(ctx, userID, in.Category, in.Month, in.Year)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	budget := &models.Budget{
		UserID:   userID,
		Category: in.Category,
		Limit:    in.Limit,
		Spent:    spent,
		Month:    in.Month,
		Year:     in.Year,
	}

	if err := s.budgets.CreateBudget(ctx, budget); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflict("Budget already exists for this category and month")
		}
		return nil, apperr.Internal(err)
	}

	s.log.Infof("Budget created for user %s: %s %d/%d", userID.Hex(), budget.Category, budget.Month, budget.Year)
	return budget, nil
}

// ListBudgets returns the user's budgets for one month, sorted by category.
func (s *Service) ListBudgets(ctx context.Context, userID primitive.ObjectID, month, year int) ([]models.Budget, error) {
	budgets, err := s.budgets.ListBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// GetBudget returns one owned budget.
func (s *Service) GetBudget(ctx context.Context, userID primitive.ObjectID, id string) (*models.Budget, error) {
	budgetID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Budget not found")
	}
	budget, err := s.budgets.FindBudgetByID(ctx, userID, budgetID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Budget not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return budget, nil
}

// UpdateBudget applies partial changes. Moving a budget to another
// period or category re-checks uniqueness and re-backfills the spent
// counter from the destination period's transactions.
func (s *Service) UpdateBudget(ctx context.Context, userID primitive.ObjectID, id string, upd BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	moved := false
	if upd.Category != nil && *upd.Category != budget.Category {
		budget.Category = *upd.Category
		moved = true
	}
	if upd.Month != nil && *upd.Month != budget.Month {
		budget.Month = *upd.Month
		moved = true
	}
	if upd.Year != nil && *upd.Year != budget.Year {
		budget.Year = *upd.Year
		moved = true
	}
	if upd.Limit != nil {
		budget.Limit = *upd.Limit
	}

	if fields := validation.Budget(budget.Category, budget.Limit, budget.Month, budget.Year); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	if moved {
		existing, err := s.budgets.FindBudget(ctx, userID, budget.Category, budget.Month, budget.Year)
		if err == nil && existing.ID != budget.ID {
			return nil, apperr.Conflict("Budget already exists for this category and month")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Internal(err)
		}

		spent, _, err := s.spentInPeriod(ctx, userID, budget.Category, budget.Month, budget.Year)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		budget.Spent = spent
	}

	if err := s.budgets.UpdateBudget(ctx, budget); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflict("Budget already exists for this category and month")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Budget not found")
		}
		return nil, apperr.Internal(err)
	}
	return budget, nil
}

// DeleteBudget removes an owned budget.
func (s *Service) DeleteBudget(ctx context.Context, userID primitive.ObjectID, id string) error {
	budget, err := s.GetBudget(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.budgets.DeleteBudget(ctx, userID, budget.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Budget not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// BudgetProgress reports each budget of the period with its spending
// recomputed by a fresh aggregation over expense transactions. The
// cached spent counter is never consulted here; this read path is
// authoritative and absorbs any counter drift.
func (s *Service) BudgetProgress(ctx context.Context, userID primitive.ObjectID, month, year int) ([]models.BudgetProgress, error) {
	budgets, err := s.budgets.ListBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	progress := make([]models.BudgetProgress, 0, len(budgets))
	for _, budget := range budgets {
		actual, count, err := s.spentInPeriod(ctx, userID, budget.Category, month, year)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		progress = append(progress, buildProgress(budget, actual, count))
	}
	return progress, nil
}

func buildProgress(budget models.Budget, actual float64, count int64) models.BudgetProgress {
	percentage := 0
	if budget.Limit > 0 {
		percentage = int(math.Round(actual / budget.Limit * 100))
	}

	status := models.BudgetStatusGood
	switch {
	case percentage >= models.BudgetExceededThreshold:
		status = models.BudgetStatusExceeded
	case percentage >= models.BudgetWarningThreshold:
		status = models.BudgetStatusWarning
	}

	return models.BudgetProgress{
		Budget:           budget,
		ActualSpent:      actual,
		Percentage:       percentage,
		Remaining:        math.Max(0, budget.Limit-actual),
		Status:           status,
		TransactionCount: count,
	}
}

// spentInPeriod sums expense transactions for one budget period.
func (s *Service) spentInPeriod(ctx context.Context, userID primitive.ObjectID, category string, month, year int) (float64, int64, error) {
	start, end := monthRange(month, year)
	return s.txns.SumExpenses(ctx, userID, category, start, end)
}
