package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	docmemory "github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	"github.com/MrJamesThe3rd/biztrack/internal/notify"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	prefsmemory "github.com/MrJamesThe3rd/biztrack/internal/prefs/memory"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	projectstore "github.com/MrJamesThe3rd/biztrack/internal/project/store"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
	txstore "github.com/MrJamesThe3rd/biztrack/internal/transaction/store"
)

var now = time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)

type fixture struct {
	docs     *docmemory.Store
	projects *projectstore.Store
	txs      *txstore.Store
	prefs    *prefsmemory.Store
	user     *auth.User
}

func newFixture() *fixture {
	docs := docmemory.New()

	return &fixture{
		docs:     docs,
		projects: projectstore.New(docs),
		txs:      txstore.New(docs),
		prefs:    prefsmemory.New(),
		user:     &auth.User{ID: uuid.New(), Email: "ada@example.com", DisplayName: "Ada"},
	}
}

func (f *fixture) deps() session.Deps {
	return session.Deps{
		Projects:     f.projects,
		Transactions: f.txs,
		Prefs:        f.prefs,
		Now:          func() time.Time { return now },
	}
}

func (f *fixture) signedIn(t *testing.T) *session.Session {
	t.Helper()

	s := session.New(f.deps())
	require.NoError(t, s.SignIn(context.Background(), f.user))

	return s
}

func (f *fixture) seedProject(t *testing.T, name string) *project.Project {
	t.Helper()

	p := project.New(f.user.ID, project.CreateParams{Name: name}.Normalize(), now)
	require.NoError(t, f.projects.CreateProject(context.Background(), p))

	return p
}

func (f *fixture) seedTx(t *testing.T, p *project.Project, kind transaction.Kind, amount int64, date time.Time) *transaction.Transaction {
	t.Helper()

	tx := transaction.New(f.user.ID, p.ID, transaction.CreateParams{
		Kind:   kind,
		Name:   string(kind),
		Amount: decimal.NewFromInt(amount),
		Date:   date,
	}, now)
	require.NoError(t, f.txs.CreateTransaction(context.Background(), tx))

	return tx
}

func (f *fixture) remembered(t *testing.T) (string, bool) {
	t.Helper()

	v, ok, err := f.prefs.Get(context.Background(), prefs.LastActiveProjectKey(f.user.ID))
	require.NoError(t, err)

	return v, ok
}

func TestSession_SignIn(t *testing.T) {
	type testCase struct {
		name       string
		seed       func(t *testing.T, f *fixture) (want *project.Project)
		wantTxs    int
		wantActive bool
	}

	tests := []testCase{
		{
			name: "Remembered project wins",
			seed: func(t *testing.T, f *fixture) *project.Project {
				f.seedProject(t, "First")
				second := f.seedProject(t, "Second")
				f.seedTx(t, second, transaction.KindExpense, 5, now)
				require.NoError(t, f.prefs.Set(context.Background(), prefs.LastActiveProjectKey(f.user.ID), second.ID.String()))

				return second
			},
			wantTxs:    1,
			wantActive: true,
		},
		{
			name: "Stale preference falls back to first",
			seed: func(t *testing.T, f *fixture) *project.Project {
				first := f.seedProject(t, "First")
				f.seedProject(t, "Second")
				require.NoError(t, f.prefs.Set(context.Background(), prefs.LastActiveProjectKey(f.user.ID), uuid.NewString()))

				return first
			},
			wantActive: true,
		},
		{
			name: "No projects",
			seed: func(t *testing.T, f *fixture) *project.Project {
				require.NoError(t, f.prefs.Set(context.Background(), prefs.LastActiveProjectKey(f.user.ID), uuid.NewString()))
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			want := tt.seed(t, f)

			s := f.signedIn(t)

			assert.Equal(t, session.StateReady, s.State())
			assert.Len(t, s.Transactions(), tt.wantTxs)
			assert.Empty(t, s.Err())
			assert.False(t, s.Busy())

			remembered, ok := f.remembered(t)

			if !tt.wantActive {
				assert.Nil(t, s.ActiveProject())
				assert.False(t, ok, "preference must be cleared")

				return
			}

			require.NotNil(t, s.ActiveProject())
			assert.Equal(t, want.ID, s.ActiveProject().ID)
			assert.True(t, ok)
			assert.Equal(t, want.ID.String(), remembered)
		})
	}
}

func TestSession_SignInProjectLoadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().
		ListProjects(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("permission denied"))

	s := session.New(session.Deps{
		Projects:     projects,
		Transactions: transaction.NewMockRepository(ctrl),
		Prefs:        prefsmemory.New(),
		Now:          func() time.Time { return now },
	})

	err := s.SignIn(context.Background(), &auth.User{ID: uuid.New()})

	require.Error(t, err)
	assert.Equal(t, session.StateReady, s.State())
	assert.Empty(t, s.Projects())
	assert.Nil(t, s.ActiveProject())
	assert.Contains(t, s.Err(), "permission denied")

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.LevelError, notes[0].Level)
}

func TestSession_SignOutAndUserChanges(t *testing.T) {
	f := newFixture()
	f.seedProject(t, "Shop")
	s := f.signedIn(t)

	renamed := *f.user
	renamed.DisplayName = "Ada L."
	require.NoError(t, s.OnUserChanged(context.Background(), &renamed))
	assert.Equal(t, "Ada L.", s.User().DisplayName)
	assert.NotNil(t, s.ActiveProject())

	require.NoError(t, s.OnUserChanged(context.Background(), nil))
	assert.Equal(t, session.StateUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Transactions())

	_, err := s.CreateTransaction(context.Background(), transaction.CreateParams{})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestSession_CreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		p := f.seedProject(t, "Shop")
		s := f.signedIn(t)

		tx, err := s.CreateTransaction(ctx, transaction.CreateParams{
			Kind:     transaction.KindExpense,
			Name:     "Flour",
			Amount:   decimal.NewFromInt(12),
			Date:     now,
			Category: "stock",
		})
		require.NoError(t, err)
		assert.Equal(t, p.ID, tx.ProjectID)
		assert.Equal(t, f.user.ID, tx.UserID)
		assert.Equal(t, now, tx.CreatedAt)

		local := s.Transactions()
		require.Len(t, local, 1)
		assert.Equal(t, tx.ID, local[0].ID)

		remote, err := f.txs.ListTransactions(ctx, f.user.ID, p.ID)
		require.NoError(t, err)
		require.Len(t, remote, 1)
		assert.Equal(t, "stock", remote[0].Category)

		notes := s.Notifications()
		require.NotEmpty(t, notes)
		assert.Equal(t, notify.LevelSuccess, notes[len(notes)-1].Level)
	})

	t.Run("Remote failure leaves local state untouched", func(t *testing.T) {
		f := newFixture()
		f.seedProject(t, "Shop")
		s := f.signedIn(t)

		f.docs.FailNextWrite(errors.New("unavailable"))

		_, err := s.CreateTransaction(ctx, transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.NewFromInt(1), Date: now})
		require.Error(t, err)
		assert.Empty(t, s.Transactions())
		assert.Contains(t, s.Err(), "unavailable")

		_, err = s.CreateTransaction(ctx, transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.NewFromInt(1), Date: now})
		require.NoError(t, err)
		assert.Empty(t, s.Err(), "a success clears the recorded error")
	})

	t.Run("Requires an active project", func(t *testing.T) {
		f := newFixture()
		s := f.signedIn(t)

		_, err := s.CreateTransaction(ctx, transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Date: now})
		assert.ErrorIs(t, err, session.ErrNoActiveProject)
	})

	t.Run("Rejects fields of another kind", func(t *testing.T) {
		f := newFixture()
		f.seedProject(t, "Shop")
		s := f.signedIn(t)

		_, err := s.CreateTransaction(ctx, transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Date: now, Category: "sales"})
		assert.ErrorIs(t, err, transaction.ErrFieldNotApplicable)
		assert.Empty(t, s.Transactions())
	})
}

func TestSession_EditTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	tx := f.seedTx(t, p, transaction.KindCashIn, 100, now)
	s := f.signedIn(t)

	_, err := s.EditTransaction(ctx, tx.ID, transaction.Patch{Category: new("sales")})
	assert.ErrorIs(t, err, transaction.ErrFieldNotApplicable)

	_, err = s.EditTransaction(ctx, uuid.New(), transaction.Patch{Name: new("x")})
	assert.ErrorIs(t, err, session.ErrTransactionNotFound)

	got, err := s.EditTransaction(ctx, tx.ID, transaction.Patch{Amount: new(decimal.NewFromInt(150)), Note: new("invoice 7")})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(got.Amount))
	assert.Equal(t, transaction.KindCashIn, got.Kind)

	local := s.Transactions()
	require.Len(t, local, 1)
	assert.Equal(t, "invoice 7", local[0].Note)

	remote, err := f.txs.ListTransactions(ctx, f.user.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(remote[0].Amount))
}

func TestSession_EditTransactionRemoteFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	tx := f.seedTx(t, p, transaction.KindExpense, 100, now)
	s := f.signedIn(t)

	f.docs.FailNextWrite(errors.New("offline"))

	_, err := s.EditTransaction(ctx, tx.ID, transaction.Patch{Amount: new(decimal.NewFromInt(1))})
	require.ErrorIs(t, err, session.ErrRemote)
	assert.True(t, decimal.NewFromInt(100).Equal(s.Transactions()[0].Amount))
}

func TestSession_DeleteTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	a := f.seedTx(t, p, transaction.KindExpense, 1, now)
	b := f.seedTx(t, p, transaction.KindExpense, 2, now)
	s := f.signedIn(t)

	require.NoError(t, s.DeleteTransaction(ctx, a.ID))

	local := s.Transactions()
	require.Len(t, local, 1)
	assert.Equal(t, b.ID, local[0].ID)

	assert.ErrorIs(t, s.DeleteTransaction(ctx, a.ID), session.ErrTransactionNotFound)

	remote, err := f.txs.ListTransactions(ctx, f.user.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, remote, 1)
}

func TestSession_CreateProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.signedIn(t)

	first, err := s.CreateProject(ctx, project.CreateParams{Name: "Bakery", Currency: "eur"}, false)
	require.NoError(t, err)
	assert.Equal(t, "EUR", first.Currency)
	require.NotNil(t, s.ActiveProject(), "the first project becomes active")
	assert.Equal(t, first.ID, s.ActiveProject().ID)

	second, err := s.CreateProject(ctx, project.CreateParams{Name: "Home", Type: project.TypePersonal}, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, s.ActiveProject().ID)

	_, err = s.CreateProject(ctx, project.CreateParams{Name: "Bad", Currency: "XYZW"}, true)
	assert.ErrorIs(t, err, project.ErrInvalidCurrency)

	third, err := s.CreateProject(ctx, project.CreateParams{Name: "Van"}, true)
	require.NoError(t, err)
	assert.Equal(t, third.ID, s.ActiveProject().ID)

	remembered, _ := f.remembered(t)
	assert.Equal(t, third.ID.String(), remembered)

	assert.Len(t, s.Projects(), 3)
	assert.NotEqual(t, second.ID, s.ActiveProject().ID)
}

func TestSession_UpdateProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	s := f.signedIn(t)

	got, err := s.UpdateProject(ctx, p.ID, project.Patch{Name: new("Corner Shop"), Tracking: new(project.TrackingCashflow)})
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", got.Name)
	assert.Equal(t, project.TrackingCashflow, s.ActiveProject().Tracking)

	_, err = s.UpdateProject(ctx, uuid.New(), project.Patch{Name: new("x")})
	assert.ErrorIs(t, err, session.ErrProjectNotFound)
}

func TestSession_DeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	kept := f.seedProject(t, "Kept")
	doomed := f.seedProject(t, "Doomed")
	f.seedTx(t, doomed, transaction.KindExpense, 1, now)
	f.seedTx(t, doomed, transaction.KindCashIn, 2, now)
	keptTx := f.seedTx(t, kept, transaction.KindExpense, 3, now)
	require.NoError(t, f.prefs.Set(ctx, prefs.LastActiveProjectKey(f.user.ID), doomed.ID.String()))

	s := f.signedIn(t)
	require.Equal(t, doomed.ID, s.ActiveProject().ID)
	require.Len(t, s.Transactions(), 2)

	require.NoError(t, s.DeleteProject(ctx, doomed.ID))

	remote, err := f.txs.ListTransactions(ctx, f.user.ID, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, remote)

	for _, p := range s.Projects() {
		assert.NotEqual(t, doomed.ID, p.ID)
	}

	require.NotNil(t, s.ActiveProject())
	assert.Equal(t, kept.ID, s.ActiveProject().ID)

	local := s.Transactions()
	require.Len(t, local, 1)
	assert.Equal(t, keptTx.ID, local[0].ID)

	require.NoError(t, s.DeleteProject(ctx, kept.ID))
	assert.Nil(t, s.ActiveProject())
	assert.Empty(t, s.Transactions())

	_, ok := f.remembered(t)
	assert.False(t, ok)
}

func TestSession_DeleteProjectFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	f.seedTx(t, p, transaction.KindExpense, 1, now)
	s := f.signedIn(t)

	f.docs.FailNextWrite(errors.New("offline"))

	require.Error(t, s.DeleteProject(ctx, p.ID))
	assert.Len(t, s.Projects(), 1)
	assert.Equal(t, p.ID, s.ActiveProject().ID)
	assert.Len(t, s.Transactions(), 1)
}

func TestSession_ImportTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.seedProject(t, "Shop")
	s := f.signedIn(t)

	rows := []transaction.CreateParams{
		{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.NewFromInt(10), Date: now},
		{Kind: transaction.KindExpense, Name: "Rent", Amount: decimal.NewFromInt(-1), Date: now},
	}

	_, err := s.ImportTransactions(ctx, rows)
	assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
	assert.Empty(t, s.Transactions())

	rows[1].Amount = decimal.NewFromInt(4)

	got, err := s.ImportTransactions(ctx, rows)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, s.Transactions(), 2)

	remote, err := f.txs.ListTransactions(ctx, f.user.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, remote, 2)
}

func TestSession_ReportScenario(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t, "Shop")
	f.seedTx(t, p, transaction.KindExpense, 50, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	f.seedTx(t, p, transaction.KindCashIn, 200, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	s := f.signedIn(t)

	r, err := s.Report(datefilter.AllTime(), "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(r.Summary.Income))
	assert.True(t, decimal.NewFromInt(50).Equal(r.Summary.Expenses))
	assert.True(t, decimal.NewFromInt(150).Equal(r.Summary.Net))

	exp, err := s.ExportCSV(datefilter.AllTime(), "")
	require.NoError(t, err)
	assert.Equal(t, "BizTrack_Shop_Export_2024-06-12.csv", exp.Filename)
	assert.Contains(t, exp.Content, `2024-06-03,"cash-in",cash-in,200.00,USD,""`)
}

func TestSession_ReportFailsWhenTransactionsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	p := project.New(userID, project.CreateParams{Name: "Shop"}.Normalize(), now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{p}, nil)

	txs := transaction.NewMockRepository(ctrl)
	txs.EXPECT().ListTransactions(gomock.Any(), userID, p.ID).Return(nil, errors.New("timeout"))

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})

	require.Error(t, s.SignIn(context.Background(), &auth.User{ID: userID}))

	_, err := s.Report(datefilter.AllTime(), "")
	assert.ErrorContains(t, err, "timeout")
	assert.ErrorIs(t, err, session.ErrRemote)
}

func TestSession_SwitchProjectNeverMixesTransactions(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	a := project.New(userID, project.CreateParams{Name: "A"}.Normalize(), now)
	b := project.New(userID, project.CreateParams{Name: "B"}.Normalize(), now)

	aTx := transaction.New(userID, a.ID, transaction.CreateParams{Kind: transaction.KindExpense, Name: "a", Date: now}, now)
	bTx := transaction.New(userID, b.ID, transaction.CreateParams{Kind: transaction.KindExpense, Name: "b", Date: now}, now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{a, b}, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	txs := transaction.NewMockRepository(ctrl)
	txs.EXPECT().ListTransactions(gomock.Any(), userID, a.ID).Return([]*transaction.Transaction{aTx}, nil)
	txs.EXPECT().
		ListTransactions(gomock.Any(), userID, b.ID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) ([]*transaction.Transaction, error) {
			close(started)
			<-release

			return []*transaction.Transaction{bTx}, nil
		})

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})
	require.NoError(t, s.SignIn(ctx, &auth.User{ID: userID}))
	require.Len(t, s.Transactions(), 1)
	require.Equal(t, aTx.ID, s.Transactions()[0].ID)

	done := make(chan error)
	go func() { done <- s.SetActiveProject(ctx, b.ID) }()

	<-started
	assert.Empty(t, s.Transactions(), "A's transactions must be gone before B's arrive")
	assert.Equal(t, b.ID, s.ActiveProject().ID)
	assert.True(t, s.Busy())

	close(release)
	require.NoError(t, <-done)

	got := s.Transactions()
	require.Len(t, got, 1)
	assert.Equal(t, bTx.ID, got[0].ID)
	assert.False(t, s.Busy())
}

func TestSession_StaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	a := project.New(userID, project.CreateParams{Name: "A"}.Normalize(), now)
	b := project.New(userID, project.CreateParams{Name: "B"}.Normalize(), now)

	bTx := transaction.New(userID, b.ID, transaction.CreateParams{Kind: transaction.KindExpense, Name: "b", Date: now}, now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{a, b}, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	txs := transaction.NewMockRepository(ctrl)
	txs.EXPECT().ListTransactions(gomock.Any(), userID, a.ID).Return(nil, nil)
	txs.EXPECT().
		ListTransactions(gomock.Any(), userID, b.ID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) ([]*transaction.Transaction, error) {
			close(started)
			<-release

			return []*transaction.Transaction{bTx}, nil
		})
	txs.EXPECT().ListTransactions(gomock.Any(), userID, a.ID).Return(nil, nil)

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})
	require.NoError(t, s.SignIn(ctx, &auth.User{ID: userID}))

	done := make(chan error)
	go func() { done <- s.SetActiveProject(ctx, b.ID) }()

	<-started
	require.NoError(t, s.SetActiveProject(ctx, a.ID))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, a.ID, s.ActiveProject().ID)
	assert.Empty(t, s.Transactions(), "B's late result must not land in A")
}

func TestSession_WritesWaitForTransactionLoad(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	a := project.New(userID, project.CreateParams{Name: "A"}.Normalize(), now)
	b := project.New(userID, project.CreateParams{Name: "B"}.Normalize(), now)

	bTx := transaction.New(userID, b.ID, transaction.CreateParams{Kind: transaction.KindExpense, Name: "b", Date: now}, now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{a, b}, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	txs := transaction.NewMockRepository(ctrl)
	txs.EXPECT().ListTransactions(gomock.Any(), userID, a.ID).Return(nil, nil)
	txs.EXPECT().
		ListTransactions(gomock.Any(), userID, b.ID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) ([]*transaction.Transaction, error) {
			close(started)
			<-release

			return []*transaction.Transaction{bTx}, nil
		})
	txs.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})
	require.NoError(t, s.SignIn(ctx, &auth.User{ID: userID}))

	done := make(chan error)
	go func() { done <- s.SetActiveProject(ctx, b.ID) }()

	<-started

	params := transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.NewFromInt(5), Date: now}

	_, err := s.CreateTransaction(ctx, params)
	require.ErrorIs(t, err, session.ErrInFlight)
	assert.Empty(t, s.Err())

	close(release)
	require.NoError(t, <-done)

	created, err := s.CreateTransaction(ctx, params)
	require.NoError(t, err)

	got := s.Transactions()
	require.Len(t, got, 2)
	assert.Equal(t, bTx.ID, got[0].ID)
	assert.Equal(t, created.ID, got[1].ID)
}

func TestSession_WriteFinishingDuringReloadIsKept(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	p := project.New(userID, project.CreateParams{Name: "Shop"}.Normalize(), now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{p}, nil).Times(2)

	createStarted := make(chan struct{})
	releaseCreate := make(chan struct{})
	loadStarted := make(chan struct{})
	releaseLoad := make(chan struct{})

	txs := transaction.NewMockRepository(ctrl)
	gomock.InOrder(
		txs.EXPECT().ListTransactions(gomock.Any(), userID, p.ID).Return(nil, nil),
		txs.EXPECT().
			ListTransactions(gomock.Any(), userID, p.ID).
			DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) ([]*transaction.Transaction, error) {
				close(loadStarted)
				<-releaseLoad

				// Listed before the concurrent write landed.
				return nil, nil
			}),
	)
	txs.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *transaction.Transaction) error {
			close(createStarted)
			<-releaseCreate

			return nil
		})

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})
	require.NoError(t, s.SignIn(ctx, &auth.User{ID: userID}))

	type result struct {
		tx  *transaction.Transaction
		err error
	}

	created := make(chan result)
	go func() {
		tx, err := s.CreateTransaction(ctx, transaction.CreateParams{Kind: transaction.KindExpense, Name: "Flour", Amount: decimal.NewFromInt(10), Date: now})
		created <- result{tx: tx, err: err}
	}()

	<-createStarted

	reloaded := make(chan error)
	go func() { reloaded <- s.Reload(ctx) }()

	<-loadStarted
	close(releaseCreate)

	res := <-created
	require.NoError(t, res.err)

	close(releaseLoad)
	require.NoError(t, <-reloaded)

	got := s.Transactions()
	require.Len(t, got, 1)
	assert.Equal(t, res.tx.ID, got[0].ID)
}

func TestSession_DuplicateSubmissionIsRejected(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	p := project.New(userID, project.CreateParams{Name: "Shop"}.Normalize(), now)

	projects := project.NewMockRepository(ctrl)
	projects.EXPECT().ListProjects(gomock.Any(), userID).Return([]*project.Project{p}, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	txs := transaction.NewMockRepository(ctrl)
	txs.EXPECT().ListTransactions(gomock.Any(), userID, p.ID).Return(nil, nil)
	txs.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *transaction.Transaction) error {
			close(started)
			<-release

			return nil
		}).
		Times(1)

	s := session.New(session.Deps{Projects: projects, Transactions: txs, Prefs: prefsmemory.New()})
	require.NoError(t, s.SignIn(ctx, &auth.User{ID: userID}))

	params := transaction.CreateParams{Kind: transaction.KindCashIn, Name: "Sale", Amount: decimal.NewFromInt(5), Date: now}

	done := make(chan error)
	go func() {
		_, err := s.CreateTransaction(ctx, params)
		done <- err
	}()

	<-started
	assert.True(t, s.Busy())

	_, err := s.CreateTransaction(ctx, params)
	assert.ErrorIs(t, err, session.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, s.Transactions(), 1)
	assert.False(t, s.Busy())
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedProject(t, "Shop")

	m := session.NewManager(f.deps())

	s1, err := m.Get(ctx, f.user)
	require.NoError(t, err)

	s2, err := m.Get(ctx, f.user)
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	other, err := m.Get(ctx, &auth.User{ID: uuid.New()})
	require.NoError(t, err)
	assert.NotSame(t, s1, other)
	assert.Nil(t, other.ActiveProject(), "users never see each other's projects")

	renamed := *f.user
	renamed.DisplayName = "Renamed"
	m.HandleUserChanged(f.user.ID, &renamed)
	assert.Equal(t, "Renamed", s1.User().DisplayName)

	m.HandleUserChanged(f.user.ID, nil)
	_, ok := m.Lookup(f.user.ID)
	assert.False(t, ok)
	assert.Equal(t, session.StateUnauthenticated, s1.State())
}
