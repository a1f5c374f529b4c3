package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

const (
	demoEmail    = "demo@biztrack.local"
	demoPassword = "demo-password"
)

// seedDemo creates the demo account with one project and a month of sample
// activity, then signs the session out again so the user starts at sign-in.
func seedDemo(ctx context.Context, a *auth.Service, s *session.Session) error {
	u, err := a.SignUp(ctx, auth.SignUpParams{Email: demoEmail, Password: demoPassword, DisplayName: "Demo"})
	if err != nil {
		return fmt.Errorf("creating demo account: %w", err)
	}

	if err := s.SignIn(ctx, u); err != nil {
		return fmt.Errorf("opening demo session: %w", err)
	}
	defer s.SignOut()

	if _, err := s.CreateProject(ctx, project.CreateParams{Name: "Corner Bakery", Currency: "USD"}, true); err != nil {
		return fmt.Errorf("creating demo project: %w", err)
	}

	today := time.Now()
	day := func(offset int) time.Time {
		d := today.AddDate(0, 0, -offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
	}

	rows := []transaction.CreateParams{
		{Kind: transaction.KindCashIn, Name: "Weekend market", Amount: decimal.RequireFromString("640"), Date: day(1)},
		{Kind: transaction.KindExpense, Name: "Flour", Amount: decimal.RequireFromString("84.20"), Date: day(2), Category: "Ingredients"},
		{Kind: transaction.KindExpense, Name: "Butter", Amount: decimal.RequireFromString("46.75"), Date: day(2), Category: "Ingredients"},
		{Kind: transaction.KindCashIn, Name: "Cafe wholesale order", Amount: decimal.RequireFromString("310"), Date: day(5)},
		{Kind: transaction.KindExpense, Name: "Electricity", Amount: decimal.RequireFromString("128.40"), Date: day(9), Category: "Utilities"},
		{Kind: transaction.KindCashOut, Name: "Owner draw", Amount: decimal.RequireFromString("200"), Date: day(12)},
		{Kind: transaction.KindAsset, Name: "Stand mixer", Amount: decimal.RequireFromString("899"), Date: day(20), PurchaseDate: new(day(21))},
		{Kind: transaction.KindCashIn, Name: "Birthday cake", Amount: decimal.RequireFromString("95"), Date: day(24), Note: "Paid by card"},
	}

	if _, err := s.ImportTransactions(ctx, rows); err != nil {
		return fmt.Errorf("adding demo transactions: %w", err)
	}

	return nil
}
