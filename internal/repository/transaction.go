package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateTransaction inserts a new transaction and fills in its generated ID.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	res, err := r.transactions.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	txn.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindTransactionByID retrieves a transaction owned by the given user.
func (r *Repository) FindTransactionByID(ctx context.Context, userID, id primitive.ObjectID) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := r.transactions.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(txn)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransaction persists changes to an owned transaction.
func (r *Repository) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	txn.UpdatedAt = time.Now().UTC()
	res, err := r.transactions.ReplaceOne(ctx, bson.M{"_id": txn.ID, "user_id": txn.UserID}, txn)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes an owned transaction.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.transactions.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransactionsByUser removes every transaction owned by the user.
func (r *Repository) DeleteTransactionsByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.transactions.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

// ListTransactions returns one page of the user's transactions, newest
// first, plus the total count for the filter.
func (r *Repository) ListTransactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter, skip, limit int64) ([]models.Transaction, int64, error) {
	filter := bson.M{"user_id": userID}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.StartDate != nil && f.EndDate != nil {
		filter["date"] = bson.M{"$gte": *f.StartDate, "$lte": *f.EndDate}
	}
	if f.Search != "" {
		filter["description"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var txns []models.Transaction
	if err := cur.All(ctx, &txns); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}

	total, err := r.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return txns, total, nil
}

// CountTransactions returns the user's all-time transaction count.
func (r *Repository) CountTransactions(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.transactions.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// TotalsByType sums amounts grouped by transaction type. Zero start and
// end times mean no date restriction.
func (r *Repository) TotalsByType(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.TypeTotal, error) {
	match := bson.M{"user_id": userID}
	if !start.IsZero() {
		match["date"] = bson.M{"$gte": start, "$lte": end}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate totals by type: %w", err)
	}
	defer cur.Close(ctx)

	var totals []models.TypeTotal
	if err := cur.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode totals by type: %w", err)
	}
	return totals, nil
}

// ExpenseTotalsByCategory sums expenses grouped by category, largest
// first. A positive max limits the number of categories returned.
func (r *Repository) ExpenseTotalsByCategory(ctx context.Context, userID primitive.ObjectID, start, end time.Time, max int64) ([]models.CategoryTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": userID,
			"type":    models.TypeExpense,
			"date":    bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	}
	if max > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: max}})
	}

	cur, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category totals: %w", err)
	}
	defer cur.Close(ctx)

	var totals []models.CategoryTotal
	if err := cur.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode category totals: %w", err)
	}
	return totals, nil
}

// MonthlyTotals sums amounts grouped by (year, month, type) in ascending
// chronological order, for trend charts.
func (r *Repository) MonthlyTotals(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.MonthlyTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": userID,
			"date":    bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$date"},
				"month": bson.M{"$month": "$date"},
				"type":  "$type",
			},
			"total": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"type":  "$_id.type",
			"total": 1,
		}}},
	}

	cur, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly totals: %w", err)
	}
	defer cur.Close(ctx)

	var totals []models.MonthlyTotal
	if err := cur.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode monthly totals: %w", err)
	}
	return totals, nil
}

// SumExpenses totals the user's expense transactions for one category
// within [start, end]. This is the authoritative read behind budget
// backfill and progress.
func (r *Repository) SumExpenses(ctx context.Context, userID primitive.ObjectID, category string, start, end time.Time) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":  userID,
			"type":     models.TypeExpense,
			"category": category,
			"date":     bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	defer cur.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode expense sum: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Total, results[0].Count, nil
}
