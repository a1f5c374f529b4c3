// Package export produces CSV downloads of a session's history and keeps an
// optional archive copy of every download.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/money"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// Source renders the CSV of one user's active project. *session.Session
// satisfies it.
type Source interface {
	ExportCSV(f datefilter.Filter, kind transaction.Kind) (session.Export, error)
}

// Archiver stores a copy of an export and returns where it was put.
type Archiver interface {
	Archive(ctx context.Context, userID uuid.UUID, name string, content []byte) (string, error)
}

type Result struct {
	session.Export
	// Archive is the archive location, empty when archiving is off or failed.
	Archive string
}

type Service struct {
	archiver Archiver
}

// NewService creates an export service. archiver may be nil.
func NewService(archiver Archiver) *Service {
	return &Service{archiver: archiver}
}

// Export renders src's CSV for the filter. A failing archive is logged and
// does not fail the download.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, src Source, f datefilter.Filter, kind transaction.Kind) (Result, error) {
	exp, err := src.ExportCSV(f, kind)
	if err != nil {
		return Result{}, fmt.Errorf("rendering export: %w", err)
	}

	res := Result{Export: exp}

	if s.archiver == nil {
		return res, nil
	}

	loc, err := s.archiver.Archive(ctx, userID, exp.Filename, []byte(exp.Content))
	if err != nil {
		slog.WarnContext(ctx, "failed to archive export", "user_id", userID, "filename", exp.Filename, "error", err)
		return res, nil
	}

	res.Archive = loc

	return res, nil
}

// Summary lists txs one per line as "yyyy-MM-dd | name | ±amount". Cash-in
// is signed +, everything else -.
func Summary(txs []*transaction.Transaction, currency string) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.Kind == transaction.KindCashIn {
			sign = "+"
		}

		fmt.Fprintf(&sb, "%s | %s | %s%s\n", tx.Date.Format(time.DateOnly), tx.Name, sign, money.Format(tx.Amount, currency))
	}

	return sb.String()
}
