package bank

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a European formatted number such as "1.234,56" or "-588,74".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}
