package models

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// TransactionCategories is the single list every layer validates against.
var TransactionCategories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Healthcare",
	"Education",
	"Shopping",
	"Bills",
	"Rent",
	"Salary",
	"Freelance",
	"Investment",
	"Other",
}

// BudgetCategories excludes the income-only categories; budgets cap
// expenses, so there is nothing to budget for Salary, Freelance or
// Investment.
var BudgetCategories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Healthcare",
	"Education",
	"Shopping",
	"Bills",
	"Rent",
	"Other",
}

// IsValidType reports whether t is a known transaction type.
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// IsValidCategory reports whether c is a known transaction category.
func IsValidCategory(c string) bool {
	return contains(TransactionCategories, c)
}

// IsValidBudgetCategory reports whether c may carry a budget.
func IsValidBudgetCategory(c string) bool {
	return contains(BudgetCategories, c)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
