// Package report turns a project's transactions into everything the dashboard
// and history views display. Nothing here fails on bad records: they are
// logged and skipped.
package report

import (
	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type Report struct {
	Interval    datefilter.Interval
	Granularity Granularity
	Summary     Summary
	Trend       []Bucket
	Categories  []Category
	History     []*transaction.Transaction
}

// Build computes a full report. Summary, trend and categories cover every
// transaction in iv; history additionally honours the tracking preference
// and the optional kind filter.
func Build(txs []*transaction.Transaction, iv datefilter.Interval, kind transaction.Kind, tracking project.Tracking) Report {
	inRange := InInterval(txs, iv)
	trend, g := Trend(inRange, iv)

	return Report{
		Interval:    iv,
		Granularity: g,
		Summary:     Summarize(inRange, tracking),
		Trend:       trend,
		Categories:  Categories(inRange),
		History:     History(OfKind(Visible(inRange, tracking), kind)),
	}
}
