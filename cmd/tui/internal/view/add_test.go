package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

func TestAddFields_Params(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.June, d, 0, 0, 0, 0, time.Local) }

	type testCase struct {
		name    string
		fields  addFields
		want    transaction.CreateParams
		wantErr error
	}

	tests := []testCase{
		{
			name:   "Expense keeps category",
			fields: addFields{txFields: txFields{kind: transaction.KindExpense, name: " Flour ", amount: "12.50", date: "2024-06-01", category: "Ingredients"}},
			want:   transaction.CreateParams{Kind: transaction.KindExpense, Name: "Flour", Amount: decimal.RequireFromString("12.50"), Date: day(1), Category: "Ingredients"},
		},
		{
			name:   "Category is dropped for cash-in",
			fields: addFields{txFields: txFields{kind: transaction.KindCashIn, name: "Sale", amount: "200", date: "2024-06-03", category: "stale"}},
			want:   transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.RequireFromString("200"), Date: day(3)},
		},
		{
			name:   "Asset purchase date",
			fields: addFields{txFields: txFields{kind: transaction.KindAsset, name: "Oven", amount: "900", date: "2024-06-05"}, purchaseDate: "2024-06-04"},
			want:   transaction.CreateParams{Kind: transaction.KindAsset, Name: "Oven", Amount: decimal.RequireFromString("900"), Date: day(5), PurchaseDate: new(day(4))},
		},
		{
			name:    "Bad amount",
			fields:  addFields{txFields: txFields{kind: transaction.KindExpense, name: "x", amount: "abc", date: "2024-06-01"}},
			wantErr: transaction.ErrInvalidAmount,
		},
		{
			name:    "Bad date",
			fields:  addFields{txFields: txFields{kind: transaction.KindExpense, name: "x", amount: "1", date: "June 1"}},
			wantErr: transaction.ErrMissingDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fields.Params()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
