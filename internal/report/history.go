package report

import (
	"slices"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// History returns txs most recent first. Transactions on the same instant keep
// their original relative order.
func History(txs []*transaction.Transaction) []*transaction.Transaction {
	out := slices.Clone(txs)

	slices.SortStableFunc(out, func(a, b *transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	return out
}
