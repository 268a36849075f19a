package models

// TypeTotal is an aggregated sum and count for one transaction type
type TypeTotal struct {
	Type  string  `json:"type" bson:"_id"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

// CategoryTotal is an aggregated sum and count for one category
type CategoryTotal struct {
	Category string  `json:"category" bson:"_id"`
	Total    float64 `json:"total" bson:"total"`
	Count    int64   `json:"count" bson:"count"`
}

// MonthlyTotal is an aggregated sum for one (year, month, type) bucket
type MonthlyTotal struct {
	Year  int     `json:"year" bson:"year"`
	Month int     `json:"month" bson:"month"`
	Type  string  `json:"type" bson:"type"`
	Total float64 `json:"total" bson:"total"`
}

// TransactionStats backs the dashboard charts
type TransactionStats struct {
	Monthly    []TypeTotal     `json:"monthly"`
	Categories []CategoryTotal `json:"categories"`
	Trends     []MonthlyTotal  `json:"trends"`
}

// StatsOverview summarizes a user's full transaction history
type StatsOverview struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"`
	NetWorth          float64 `json:"net_worth"`
}

// YearStats summarizes the current calendar year
type YearStats struct {
	Income           float64 `json:"income"`
	Expenses         float64 `json:"expenses"`
	Savings          float64 `json:"savings"`
	TransactionCount int64   `json:"transaction_count"`
}

// BudgetPerformance is the cached-counter view of one budget
type BudgetPerformance struct {
	Category   string  `json:"category" bson:"category"`
	Limit      float64 `json:"limit" bson:"limit"`
	Spent      float64 `json:"spent" bson:"spent"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// BudgetSummary groups the budget portion of the user stats
type BudgetSummary struct {
	Active      int64               `json:"active"`
	Performance []BudgetPerformance `json:"performance"`
}

// UserStats is the full payload of GET /api/users/stats
type UserStats struct {
	Overview      StatsOverview   `json:"overview"`
	CurrentYear   YearStats       `json:"current_year"`
	MonthlyTrends []MonthlyTotal  `json:"monthly_trends"`
	TopCategories []CategoryTotal `json:"top_categories"`
	Budgets       BudgetSummary   `json:"budgets"`
}
