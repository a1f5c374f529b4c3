package report

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// Summary holds the totals shown on the dashboard cards.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	CashOut  decimal.Decimal `json:"cashOut"`
	Assets   decimal.Decimal `json:"assets"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"count"`
}

// Summarize totals txs per kind. Net is income minus expenses; cash-out is
// also subtracted when the project tracks cash flow. Assets never affect net.
func Summarize(txs []*transaction.Transaction, tracking project.Tracking) Summary {
	s := Summary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		CashOut:  decimal.Zero,
		Assets:   decimal.Zero,
		Count:    len(txs),
	}

	for _, tx := range txs {
		switch tx.Kind {
		case transaction.KindCashIn:
			s.Income = s.Income.Add(tx.Amount)
		case transaction.KindExpense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		case transaction.KindCashOut:
			s.CashOut = s.CashOut.Add(tx.Amount)
		case transaction.KindAsset:
			s.Assets = s.Assets.Add(tx.Amount)
		}
	}

	s.Net = s.Income.Sub(s.Expenses)
	if tracking == project.TrackingCashflow {
		s.Net = s.Net.Sub(s.CashOut)
	}

	return s
}
