package repository

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateBudget inserts a new budget and fills in its generated ID. A
// unique-index violation is returned unwrapped for conflict mapping.
func (r *Repository) CreateBudget(ctx context.Context, budget *models.Budget) error {
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	res, err := r.budgets.InsertOne(ctx, budget)
	if err != nil {
		if IsDuplicateKey(err) {
			return err
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}
	budget.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindBudget retrieves the budget for one (user, category, month, year)
// period, if any.
func (r *Repository) FindBudget(ctx context.Context, userID primitive.ObjectID, category string, month, year int) (*models.Budget, error) {
	budget := &models.Budget{}
	filter := bson.M{"user_id": userID, "category": category, "month": month, "year": year}
	err := r.budgets.FindOne(ctx, filter).Decode(budget)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return budget, nil
}

// FindBudgetByID retrieves a budget owned by the given user.
func (r *Repository) FindBudgetByID(ctx context.Context, userID, id primitive.ObjectID) (*models.Budget, error) {
	budget := &models.Budget{}
	err := r.budgets.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(budget)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns the user's budgets for one month, sorted by category.
func (r *Repository) ListBudgets(ctx context.Context, userID primitive.ObjectID, month, year int) ([]models.Budget, error) {
	filter := bson.M{"user_id": userID, "month": month, "year": year}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}})

	cur, err := r.budgets.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer cur.Close(ctx)

	var budgets []models.Budget
	if err := cur.All(ctx, &budgets); err != nil {
		return nil, fmt.Errorf("failed to decode budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget persists changes to an owned budget.
func (r *Repository) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	budget.UpdatedAt = time.Now().UTC()
	res, err := r.budgets.ReplaceOne(ctx, bson.M{"_id": budget.ID, "user_id": budget.UserID}, budget)
	if err != nil {
		if IsDuplicateKey(err) {
			return err
		}
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBudget removes an owned budget.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.budgets.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBudgetsByUser removes every budget owned by the user.
func (r *Repository) DeleteBudgetsByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.budgets.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete budgets: %w", err)
	}
	return nil
}

// AdjustBudgetSpent atomically adds delta to the cached spent counter of
// the budget covering (category, month, year). A missing budget is a
// no-op: spend in untracked categories is allowed.
func (r *Repository) AdjustBudgetSpent(ctx context.Context, userID primitive.ObjectID, category string, month, year int, delta float64) error {
	filter := bson.M{"user_id": userID, "category": category, "month": month, "year": year}
	update := bson.M{
		"$inc": bson.M{"spent": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := r.budgets.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to adjust budget spent: %w", err)
	}
	return nil
}

// CountBudgets returns how many budgets the user has for one month.
func (r *Repository) CountBudgets(ctx context.Context, userID primitive.ObjectID, month, year int) (int64, error) {
	n, err := r.budgets.CountDocuments(ctx, bson.M{"user_id": userID, "month": month, "year": year})
	if err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}
	return n, nil
}
