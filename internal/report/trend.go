package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Bucket size cutovers, in days.
const (
	dailyMaxDays  = 14
	weeklyMaxDays = 60
)

// GranularityFor picks the bucket size for an interval spanning days calendar days.
func GranularityFor(days int) Granularity {
	switch {
	case days <= dailyMaxDays:
		return GranularityDay
	case days <= weeklyMaxDays:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// Bucket is one point of the trend series. Start and End are inclusive.
type Bucket struct {
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Label    string          `json:"label"`
	CashIn   decimal.Decimal `json:"cashIn"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Trend returns a dense series of buckets that partition iv, with cash-in and
// expense sums per bucket. An unbounded interval is narrowed to the days
// between the earliest and latest transaction; with no transactions the
// series is empty.
func Trend(txs []*transaction.Transaction, iv datefilter.Interval) ([]Bucket, Granularity) {
	dated := InInterval(txs, iv)

	if iv.Unbounded {
		span, ok := spanOf(dated)
		if !ok {
			return []Bucket{}, GranularityDay
		}

		iv = span
	}

	g := GranularityFor(iv.Days())
	buckets := bucketsFor(iv, g)

	for _, tx := range dated {
		i := sort.Search(len(buckets), func(i int) bool {
			return !buckets[i].End.Before(tx.Date)
		})
		if i == len(buckets) {
			continue
		}

		switch tx.Kind {
		case transaction.KindCashIn:
			buckets[i].CashIn = buckets[i].CashIn.Add(tx.Amount)
		case transaction.KindExpense:
			buckets[i].Expenses = buckets[i].Expenses.Add(tx.Amount)
		}
	}

	return buckets, g
}

func spanOf(txs []*transaction.Transaction) (datefilter.Interval, bool) {
	if len(txs) == 0 {
		return datefilter.Interval{}, false
	}

	first, last := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}

		if tx.Date.After(last) {
			last = tx.Date
		}
	}

	return datefilter.Interval{
		Start: datefilter.StartOfDay(first),
		End:   datefilter.EndOfDay(last),
	}, true
}

func bucketsFor(iv datefilter.Interval, g Granularity) []Bucket {
	var buckets []Bucket

	for start := iv.Start; !start.After(iv.End); {
		end := bucketEnd(start, g)
		if end.After(iv.End) {
			end = iv.End
		}

		buckets = append(buckets, Bucket{
			Start:    start,
			End:      end,
			Label:    label(start, g),
			CashIn:   decimal.Zero,
			Expenses: decimal.Zero,
		})

		start = end.Add(time.Nanosecond)
	}

	return buckets
}

func bucketEnd(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return datefilter.EndOfDay(datefilter.StartOfWeek(start).AddDate(0, 0, 6))
	case GranularityMonth:
		return datefilter.EndOfDay(datefilter.StartOfMonth(start).AddDate(0, 1, -1))
	}

	return datefilter.EndOfDay(start)
}

func label(start time.Time, g Granularity) string {
	if g == GranularityMonth {
		return start.Format("Jan 2006")
	}

	return start.Format("Jan 02")
}
