package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Budget statuses returned by the progress endpoint
const (
	BudgetStatusGood     = "good"
	BudgetStatusWarning  = "warning"
	BudgetStatusExceeded = "exceeded"
)

// Alert thresholds in percent of the limit
const (
	BudgetWarningThreshold  = 80
	BudgetExceededThreshold = 100
)

// Budget is a monthly spending limit for one expense category.
// Spent is a denormalized cache of the matching expense sum; the
// progress read path recomputes the sum instead of trusting it.
type Budget struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Category  string             `json:"category" bson:"category"`
	Limit     float64            `json:"limit" bson:"limit"`
	Spent     float64            `json:"spent" bson:"spent"`
	Month     int                `json:"month" bson:"month"`
	Year      int                `json:"year" bson:"year"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// BudgetProgress is one budget with its recomputed spending
type BudgetProgress struct {
	Budget           `bson:",inline"`
	ActualSpent      float64 `json:"actual_spent"`
	Percentage       int     `json:"percentage"`
	Remaining        float64 `json:"remaining"`
	Status           string  `json:"status"`
	TransactionCount int64   `json:"transaction_count"`
}
