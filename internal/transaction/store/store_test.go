package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	"github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction/store"
)

func newTx(userID, projectID uuid.UUID, kind transaction.Kind, name string, amount int64, date time.Time) *transaction.Transaction {
	return transaction.New(userID, projectID, transaction.CreateParams{
		Kind:   kind,
		Name:   name,
		Amount: decimal.NewFromInt(amount),
		Date:   date,
	}, date)
}

func TestStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	s := store.New(docs)

	userID, projectID := uuid.New(), uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	purchased := date.AddDate(0, 0, -3)

	expense := newTx(userID, projectID, transaction.KindExpense, "Rent", 900, date)
	expense.Category = "office"
	expense.Note = "June"

	asset := newTx(userID, projectID, transaction.KindAsset, "Laptop", 1500, date)
	asset.PurchaseDate = &purchased

	require.NoError(t, s.CreateTransaction(ctx, expense))
	require.NoError(t, s.CreateTransaction(ctx, asset))

	got, err := s.ListTransactions(ctx, userID, projectID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, expense.ID, got[0].ID)
	assert.Equal(t, "office", got[0].Category)
	assert.Equal(t, "June", got[0].Note)
	assert.True(t, decimal.NewFromInt(900).Equal(got[0].Amount))
	assert.Nil(t, got[0].PurchaseDate)

	assert.Equal(t, asset.ID, got[1].ID)
	require.NotNil(t, got[1].PurchaseDate)
	assert.True(t, purchased.Equal(*got[1].PurchaseDate))
	assert.Empty(t, got[1].Category)

	other, err := s.ListTransactions(ctx, userID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other, "projects must not see each other's transactions")
}

func TestStore_ListSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	s := store.New(docs)

	userID, projectID := uuid.New(), uuid.New()
	col := docstore.Transactions(userID, projectID)

	good := newTx(userID, projectID, transaction.KindCashIn, "Sale", 200, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.CreateTransaction(ctx, good))

	require.NoError(t, docs.Set(ctx, col, uuid.NewString(), map[string]any{"type": "cash-in", "amount": "10", "date": "not a date"}))
	require.NoError(t, docs.Set(ctx, col, uuid.NewString(), map[string]any{"type": "loan", "amount": "10"}))
	require.NoError(t, docs.Set(ctx, col, uuid.NewString(), map[string]any{"type": "expense", "amount": "ten"}))
	require.NoError(t, docs.Set(ctx, col, "not-a-uuid", map[string]any{"type": "expense", "amount": "1"}))

	undated := uuid.New()
	require.NoError(t, docs.Set(ctx, col, undated.String(), map[string]any{"type": "expense", "amount": "5", "name": "Undated"}))

	got, err := s.ListTransactions(ctx, userID, projectID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, good.ID, got[0].ID)
	assert.Equal(t, undated, got[1].ID)
	assert.True(t, got[1].Date.IsZero())
}

func TestStore_ListReadsStringDates(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	s := store.New(docs)

	userID, projectID := uuid.New(), uuid.New()
	id := uuid.New()

	require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, projectID), id.String(), map[string]any{
		"type":   "expense",
		"name":   "Fuel",
		"amount": 42.5,
		"date":   "2024-06-03T08:00:00Z",
	}))

	got, err := s.ListTransactions(ctx, userID, projectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC), got[0].Date.UTC())
	assert.True(t, decimal.RequireFromString("42.5").Equal(got[0].Amount))
	assert.Equal(t, "", got[0].Note)
}

func TestStore_UpdateTransaction(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())

	userID, projectID := uuid.New(), uuid.New()
	tx := newTx(userID, projectID, transaction.KindExpense, "Rent", 900, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.CreateTransaction(ctx, tx))

	err := s.UpdateTransaction(ctx, userID, projectID, tx.ID, transaction.Patch{Amount: new(decimal.NewFromInt(950)), Category: new("office")})
	require.NoError(t, err)

	got, err := s.ListTransactions(ctx, userID, projectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(950).Equal(got[0].Amount))
	assert.Equal(t, "office", got[0].Category)
	assert.Equal(t, "Rent", got[0].Name)
	assert.Equal(t, transaction.KindExpense, got[0].Kind)

	err = s.UpdateTransaction(ctx, userID, projectID, uuid.New(), transaction.Patch{Name: new("x")})
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestStore_CreateTransactionsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())

	userID, projectID := uuid.New(), uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	batch := []*transaction.Transaction{
		newTx(userID, projectID, transaction.KindCashIn, "A", 1, date),
		newTx(userID, projectID, transaction.KindCashOut, "B", 2, date),
	}
	require.NoError(t, s.CreateTransactions(ctx, batch))

	require.NoError(t, s.DeleteTransaction(ctx, userID, projectID, batch[0].ID))

	got, err := s.ListTransactions(ctx, userID, projectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, batch[1].ID, got[0].ID)
}
