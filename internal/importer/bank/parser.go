// Package bank reads semicolon separated bank statement exports. Money going
// out becomes an expense and money coming in becomes a cash-in.
package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/encoding"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

var ErrNoProfile = errors.New("no known statement layout found")

var dateLayouts = []string{"02-01-2006", "02/01/2006", time.DateOnly}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoProfile
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

// detectProfile finds the first row that carries every column of a known profile.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matches(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matches(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or amount, which covers footers and
// page markers. headerRow is the 0-based index of the header line.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRow int) ([]transaction.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var out []transaction.CreateParams

	for i, row := range rows {
		line := headerRow + i + 2

		date, ok := parseDate(cell(row, dateIdx))
		if !ok {
			continue
		}

		name := cell(row, descIdx)
		if name == "" {
			return nil, fmt.Errorf("line %d: %w", line, transaction.ErrMissingName)
		}

		amount, kind, ok := amountOf(p, cols, row)
		if !ok {
			continue
		}

		out = append(out, transaction.CreateParams{
			Kind:   kind,
			Name:   name,
			Amount: amount,
			Date:   date,
		})
	}

	return out, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func amountOf(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Kind, bool) {
	switch p.AmountMode {
	case amountSigned:
		d, ok := nonZero(cell(row, cols[p.AmountCol]))
		if !ok {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.KindExpense, true
		}

		return d, transaction.KindCashIn, true
	case amountSplit:
		if d, ok := nonZero(cell(row, cols[p.DebitCol])); ok {
			return d.Abs(), transaction.KindExpense, true
		}

		if d, ok := nonZero(cell(row, cols[p.CreditCol])); ok {
			return d.Abs(), transaction.KindCashIn, true
		}
	}

	return decimal.Zero, "", false
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
