package session

import (
	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/report"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// snapshot returns the active project and copies of its transactions. It
// fails when the transactions could not be loaded.
func (s *Session) snapshot() (*project.Project, []*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, nil, ErrNotAuthenticated
	}

	p := s.activeLocked()
	if p == nil {
		return nil, nil, ErrNoActiveProject
	}

	if s.txErr != nil {
		return nil, nil, s.txErr
	}

	c := *p

	return &c, cloneTransactions(s.txs), nil
}

// Report aggregates the active project's transactions for the given filter.
// An empty kind keeps every kind.
func (s *Session) Report(f datefilter.Filter, kind transaction.Kind) (report.Report, error) {
	p, txs, err := s.snapshot()
	if err != nil {
		return report.Report{}, err
	}

	iv := datefilter.Resolve(f, s.deps.Now())

	return report.Build(txs, iv, kind, p.Tracking), nil
}

// Export is a rendered CSV download.
type Export struct {
	Filename string
	Content  string
	Rows     []*transaction.Transaction
	Currency string
}

// ExportCSV renders the filtered history of the active project.
func (s *Session) ExportCSV(f datefilter.Filter, kind transaction.Kind) (Export, error) {
	p, txs, err := s.snapshot()
	if err != nil {
		return Export{}, err
	}

	now := s.deps.Now()
	r := report.Build(txs, datefilter.Resolve(f, now), kind, p.Tracking)

	return Export{
		Filename: report.Filename(p.Name, now),
		Content:  report.CSV(r.History, p.Currency),
		Rows:     r.History,
		Currency: p.Currency,
	}, nil
}
