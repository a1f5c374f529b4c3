package report

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

const (
	// MaxCategories is how many named groups the breakdown keeps.
	MaxCategories = 6
	// OtherCategory names the group the remaining expenses are merged into.
	OtherCategory = "Other"
)

type Category struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Categories groups expenses by name, largest first. Groups past
// MaxCategories are merged into a single OtherCategory entry.
func Categories(txs []*transaction.Transaction) []Category {
	index := map[string]int{}
	groups := []Category{}

	for _, tx := range txs {
		if tx.Kind != transaction.KindExpense {
			continue
		}

		i, ok := index[tx.Name]
		if !ok {
			i = len(groups)
			index[tx.Name] = i
			groups = append(groups, Category{Name: tx.Name, Total: decimal.Zero})
		}

		groups[i].Total = groups[i].Total.Add(tx.Amount)
	}

	// Stable keeps first-seen order among equal totals.
	slices.SortStableFunc(groups, func(a, b Category) int {
		return b.Total.Cmp(a.Total)
	})

	if len(groups) <= MaxCategories {
		return groups
	}

	other := Category{Name: OtherCategory, Total: decimal.Zero}
	for _, g := range groups[MaxCategories:] {
		other.Total = other.Total.Add(g.Total)
	}

	return append(groups[:MaxCategories:MaxCategories], other)
}
