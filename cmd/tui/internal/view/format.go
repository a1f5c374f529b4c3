package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/money"
)

const opTimeout = 10 * time.Second

// FormatAmount renders amount in the project's currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return money.Format(amount, currency)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// OpCtx returns a context with the standard timeout for store operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
