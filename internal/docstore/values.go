package docstore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// String reads a string field, returning "" when absent.
func String(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// Time reads a timestamp field stored either as time.Time or as an RFC 3339
// string. ok is false when the field is absent or null.
func Time(data map[string]any, key string) (t time.Time, ok bool, err error) {
	switch v := data[key].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	case string:
		if v == "" {
			return time.Time{}, false, nil
		}

		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("field %q: %w", key, err)
		}

		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

// Decimal reads an amount stored as a decimal string or a JSON number.
func Decimal(data map[string]any, key string) (decimal.Decimal, error) {
	switch v := data[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
		}

		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case nil:
		return decimal.Zero, fmt.Errorf("field %q: missing", key)
	default:
		return decimal.Zero, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}
