package datefilter

import (
	"strings"
	"time"
)

// Kind selects how a Filter is interpreted.
type Kind string

const (
	KindPeriod Kind = "period"
	KindDate   Kind = "date"
	KindRange  Kind = "range"
)

// Period is a named, relative date range.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodThisWeek  Period = "thisWeek"
	PeriodThisMonth Period = "thisMonth"
	PeriodAllTime   Period = "allTime"
)

func (p Period) String() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodThisWeek:
		return "This Week"
	case PeriodThisMonth:
		return "This Month"
	case PeriodAllTime:
		return "All Time"
	}

	return "Unknown"
}

// Filter is a user-chosen date selection. Only the fields relevant to Kind are read.
type Filter struct {
	Kind   Kind
	Period Period
	Date   time.Time
	Start  time.Time
	End    time.Time
}

// AllTime is the filter that keeps every transaction.
func AllTime() Filter {
	return Filter{Kind: KindPeriod, Period: PeriodAllTime}
}

// ForPeriod returns a filter for a named period.
func ForPeriod(p Period) Filter {
	return Filter{Kind: KindPeriod, Period: p}
}

// ForDate returns a filter for a single calendar day.
func ForDate(d time.Time) Filter {
	return Filter{Kind: KindDate, Date: d}
}

// ForRange returns a filter for an explicit range of days.
func ForRange(start, end time.Time) Filter {
	return Filter{Kind: KindRange, Start: start, End: end}
}

// Interval is an inclusive [Start, End] range. When Unbounded is set, Start and End
// are zero and every date is contained.
type Interval struct {
	Start     time.Time
	End       time.Time
	Unbounded bool
}

// Contains reports whether t falls inside the interval, bounds included.
func (i Interval) Contains(t time.Time) bool {
	if i.Unbounded {
		return true
	}

	return !t.Before(i.Start) && !t.After(i.End)
}

// Days returns the number of calendar days covered by the interval, or 0 when unbounded.
func (i Interval) Days() int {
	if i.Unbounded {
		return 0
	}

	start := StartOfDay(i.Start)
	end := StartOfDay(i.End)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
	}

	return days
}

// Resolve turns a filter into a concrete interval relative to now. Missing or
// invalid dates resolve to an unbounded interval instead of failing.
func Resolve(f Filter, now time.Time) Interval {
	switch f.Kind {
	case KindPeriod:
		return resolvePeriod(f.Period, now)
	case KindDate:
		if f.Date.IsZero() {
			return Interval{Unbounded: true}
		}

		return Interval{Start: StartOfDay(f.Date), End: EndOfDay(f.Date)}
	case KindRange:
		if f.Start.IsZero() || f.End.IsZero() {
			return Interval{Unbounded: true}
		}

		start, end := f.Start, f.End
		if start.After(end) {
			start, end = end, start
		}

		return Interval{Start: StartOfDay(start), End: EndOfDay(end)}
	}

	return Interval{Unbounded: true}
}

func resolvePeriod(p Period, now time.Time) Interval {
	switch p {
	case PeriodToday:
		return Interval{Start: StartOfDay(now), End: EndOfDay(now)}
	case PeriodThisWeek:
		start := StartOfWeek(now)
		return Interval{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}
	case PeriodThisMonth:
		start := StartOfMonth(now)
		return Interval{Start: start, End: EndOfDay(start.AddDate(0, 1, -1))}
	}

	return Interval{Unbounded: true}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}

	return StartOfDay(t).AddDate(0, 0, -offset+1)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Parse builds a filter from request parameters. Dates use the yyyy-MM-dd layout;
// anything unparseable yields a filter that resolves to all time.
func Parse(kind, date, start, end string) Filter {
	switch strings.TrimSpace(kind) {
	case "", string(PeriodAllTime):
		return AllTime()
	case string(PeriodToday), string(PeriodThisWeek), string(PeriodThisMonth):
		return ForPeriod(Period(kind))
	case string(KindDate):
		return ForDate(dayOrZero(date))
	case string(KindRange):
		return ForRange(dayOrZero(start), dayOrZero(end))
	}

	return AllTime()
}

// ParseDay parses a yyyy-MM-dd calendar day as local midnight. Every day entered
// by a user or read from an import goes through here so that stored dates and
// resolved intervals share one location.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
}

func dayOrZero(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		return time.Time{}
	}

	return t
}
