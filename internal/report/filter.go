package report

import (
	"log/slog"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// InInterval keeps the transactions dated inside iv, bounds included. Undated
// transactions are logged and dropped even when iv is unbounded.
func InInterval(txs []*transaction.Transaction, iv datefilter.Interval) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if tx.Date.IsZero() {
			slog.Warn("skipping transaction without a valid date", "transaction_id", tx.ID)
			continue
		}

		if iv.Contains(tx.Date) {
			out = append(out, tx)
		}
	}

	return out
}

// OfKind keeps the transactions of the given kind. An empty kind keeps everything.
func OfKind(txs []*transaction.Transaction, kind transaction.Kind) []*transaction.Transaction {
	if kind == "" {
		return txs
	}

	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if tx.Kind == kind {
			out = append(out, tx)
		}
	}

	return out
}

// Visible keeps the transactions whose kind the tracking preference surfaces.
func Visible(txs []*transaction.Transaction, tracking project.Tracking) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if tracking.Shows(tx.Kind) {
			out = append(out, tx)
		}
	}

	return out
}
