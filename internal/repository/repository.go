// Package repository provides all MongoDB operations for users,
// transactions and budgets.
package repository

import (
	"finance-tracker/internal/storage"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repository provides database operations
type Repository struct {
	users        *mongo.Collection
	transactions *mongo.Collection
	budgets      *mongo.Collection
}

// NewRepository initializes a new repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:        db.Collection(storage.UsersCollection),
		transactions: db.Collection(storage.TransactionsCollection),
		budgets:      db.Collection(storage.BudgetsCollection),
	}
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
