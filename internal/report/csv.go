package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Date,Name,Type,Amount,Currency,Note"

// WriteCSV writes txs in the given order. Name and Note are always quoted;
// the other columns never are.
func WriteCSV(w io.Writer, txs []*transaction.Transaction, currency string) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		line := strings.Join([]string{
			tx.Date.Format(time.DateOnly),
			quote(tx.Name),
			string(tx.Kind),
			csvAmount(tx.Amount),
			currency,
			quote(tx.Note),
		}, ",")

		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writing row %s: %w", tx.ID, err)
		}
	}

	return bw.Flush()
}

// CSV renders txs as export text.
func CSV(txs []*transaction.Transaction, currency string) string {
	var sb strings.Builder
	// strings.Builder never fails a write.
	_ = WriteCSV(&sb, txs, currency)

	return sb.String()
}

// csvAmount writes at least two decimals and never rounds away precision.
func csvAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}

	return d.StringFixed(2)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename is the download name of a project's export taken on day.
func Filename(projectName string, day time.Time) string {
	return fmt.Sprintf("BizTrack_%s_Export_%s.csv", strings.ReplaceAll(projectName, " ", "_"), day.Format(time.DateOnly))
}
