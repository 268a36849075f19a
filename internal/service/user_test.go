package service_test

import (
	"context"
	"testing"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")

	name := "New Name"
	avatar := "https://example.com/me.png"
	user, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, avatar, user.Avatar)
	assert.Equal(t, "a@example.com", user.Email, "email unchanged when not provided")
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")
	seedUser(t, f, "b@example.com")

	taken := "b@example.com"
	_, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{Email: &taken})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestUpdateProfileKeepingOwnEmail(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")

	same := "a@example.com"
	user, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{Email: &same})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")
	other := seedUser(t, f, "b@example.com")
	month, year, _ := currentPeriod()

	_, err := svc.CreateBudget(ctx, userID, service.BudgetInput{Category: "Food", Limit: 500, Month: month, Year: year})
	require.NoError(t, err)
	txn, err := svc.CreateTransaction(ctx, userID, expenseInput("Food", 100, 5))
	require.NoError(t, err)

	keptTxn, err := svc.CreateTransaction(ctx, other, expenseInput("Rent", 700, 1))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, userID))

	var appErr *apperr.Error
	_, err = svc.Profile(ctx, userID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)

	_, err = svc.GetTransaction(ctx, userID, txn.ID.Hex())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)

	budgets, err := svc.ListBudgets(ctx, userID, month, year)
	require.NoError(t, err)
	assert.Empty(t, budgets)

	// The other user's data survives.
	_, err = svc.GetTransaction(ctx, other, keptTxn.ID.Hex())
	require.NoError(t, err)
}

func TestUserStats(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")
	month, year, _ := currentPeriod()

	_, err := svc.CreateTransaction(ctx, userID, service.TransactionInput{
		Type: models.TypeIncome, Amount: 3000, Category: "Salary", Description: "pay", Date: dateOnDay(1),
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, userID, expenseInput("Food", 400, 5))
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, userID, expenseInput("Rent", 900, 2))
	require.NoError(t, err)

	_, err = svc.CreateBudget(ctx, userID, service.BudgetInput{Category: "Food", Limit: 500, Month: month, Year: year})
	require.NoError(t, err)

	stats, err := svc.UserStats(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Overview.TotalTransactions)
	assert.Equal(t, 3000.0, stats.Overview.TotalIncome)
	assert.Equal(t, 1300.0, stats.Overview.TotalExpenses)
	assert.Equal(t, 1700.0, stats.Overview.NetWorth)

	assert.Equal(t, 3000.0, stats.CurrentYear.Income)
	assert.Equal(t, 1300.0, stats.CurrentYear.Expenses)
	assert.Equal(t, 1700.0, stats.CurrentYear.Savings)
	assert.Equal(t, int64(3), stats.CurrentYear.TransactionCount)

	require.NotEmpty(t, stats.TopCategories)
	assert.Equal(t, "Rent", stats.TopCategories[0].Category)

	assert.Equal(t, int64(1), stats.Budgets.Active)
	require.Len(t, stats.Budgets.Performance, 1)
	assert.InDelta(t, 80.0, stats.Budgets.Performance[0].Percentage, 0.001)
}

func TestMonthTotals(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, f, "a@example.com")
	month, year, _ := currentPeriod()

	_, err := svc.CreateTransaction(ctx, userID, service.TransactionInput{
		Type: models.TypeIncome, Amount: 2500, Category: "Salary", Description: "pay", Date: dateOnDay(1),
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, userID, expenseInput("Food", 300, 8))
	require.NoError(t, err)

	income, expense, err := svc.MonthTotals(ctx, userID, month, year)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, income)
	assert.Equal(t, 300.0, expense)
}
