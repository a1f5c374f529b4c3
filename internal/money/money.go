package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used when a project or preference carries no usable code.
const DefaultCurrency = "USD"

var ErrInvalidAmount = errors.New("invalid amount")

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"NGN": "₦",
	"KRW": "₩",
	"PHP": "₱",
	"BRL": "R$",
	"CAD": "CA$",
	"AUD": "A$",
	"KES": "KSh",
	"GHS": "GH₵",
	"ZAR": "R",
}

var printer = message.NewPrinter(language.English)

// ValidCode reports whether code is a known ISO 4217 currency.
func ValidCode(code string) bool {
	_, err := currency.ParseISO(strings.TrimSpace(code))
	return err == nil
}

// Normalize upper-cases a currency code and falls back to DefaultCurrency for unknown codes.
func Normalize(code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return DefaultCurrency
	}

	return unit.String()
}

// Symbol returns the display symbol for a currency code. Codes without a
// dedicated symbol are rendered as the code followed by a space.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := symbols[code]; ok {
		return s
	}

	return code + " "
}

// Format renders an amount with its currency symbol, grouped thousands and two decimals.
func Format(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	f := amount.Round(2).InexactFloat64()

	return sign + Symbol(code) + printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// ParseAmount parses a user-entered amount. Both "." and "," are accepted as the
// decimal separator; negative values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	return d, nil
}
