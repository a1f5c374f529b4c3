// Package biztrack reads the CSV layout the app exports, so an export can be
// imported back into any project.
package biztrack

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/encoding"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

const (
	colDate     = "date"
	colName     = "name"
	colType     = "type"
	colAmount   = "amount"
	colNote     = "note"
	colCategory = "category"
)

var ErrMissingColumn = errors.New("missing column")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a header line followed by one transaction per line. Columns
// are matched by name case-insensitively. Currency is ignored since amounts
// are always taken in the target project's currency. Rows that do not make a
// valid transaction are logged and skipped.
func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colDate)
	}

	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{colDate, colName, colType, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var out []transaction.CreateParams

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if blank(row) {
			continue
		}

		params, err := parseRow(row, cols)
		if err != nil {
			slog.Warn("skipping import row", "line", line, "error", err)
			continue
		}

		out = append(out, params)
	}

	return out, nil
}

func parseRow(row []string, cols map[string]int) (transaction.CreateParams, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[i])
	}

	date, err := datefilter.ParseDay(get(colDate))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("%w: %q", transaction.ErrMissingDate, get(colDate))
	}

	kind, err := ParseKind(get(colType))
	if err != nil {
		return transaction.CreateParams{}, err
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(get(colAmount), ",", ""))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("%w: %q", transaction.ErrInvalidAmount, get(colAmount))
	}

	params := transaction.CreateParams{
		Kind:   kind,
		Name:   get(colName),
		Amount: amount,
		Date:   date,
		Note:   get(colNote),
	}

	if kind == transaction.KindExpense {
		params.Category = get(colCategory)
	}

	if err := params.Validate(); err != nil {
		return transaction.CreateParams{}, err
	}

	return params, nil
}

// ParseKind accepts a kind either as stored ("cash-in") or as displayed ("Cash In").
func ParseKind(s string) (transaction.Kind, error) {
	k := transaction.Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-"))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", transaction.ErrInvalidKind, s)
	}

	return k, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
