// Package session mirrors one signed-in user's projects and the active
// project's transactions in memory and keeps the mirror in step with the
// remote store. Local state only changes after the remote write succeeded.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/notify"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoadingProjects State = "loadingProjects"
	StateReady           State = "ready"
)

var (
	ErrNotAuthenticated    = errors.New("not signed in")
	ErrNoActiveProject     = errors.New("no active project")
	ErrProjectNotFound     = errors.New("project not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInFlight            = errors.New("action already in progress")
	// ErrRemote wraps every failure reported by the remote store.
	ErrRemote              = errors.New("remote store failed")
)

const recentNotifications = 50

// Deps are the collaborators a session talks to.
type Deps struct {
	Projects     project.Repository
	Transactions transaction.Repository
	Prefs        prefs.Store
	// Notifier receives every notification in addition to the session's own recorder.
	Notifier notify.Notifier
	Now      func() time.Time
}

type Session struct {
	deps     Deps
	recorder *notify.Recorder
	notifier notify.Notifier

	mu         sync.Mutex
	state      State
	user       *auth.User
	projects   []*project.Project
	activeID   uuid.UUID
	txs        []*transaction.Transaction
	txProject  uuid.UUID
	txErr      error
	loadingTxs bool
	generation uint64
	inFlight   map[string]struct{}
	lastErr    string
}

func New(deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	recorder := notify.NewRecorder(recentNotifications)

	notifier := notify.Notifier(recorder)
	if deps.Notifier != nil {
		notifier = notify.Multi{recorder, deps.Notifier}
	}

	return &Session{
		deps:     deps,
		recorder: recorder,
		notifier: notifier,
		state:    StateUnauthenticated,
		inFlight: make(map[string]struct{}),
	}
}

// begin marks action as running. The returned function must be called when it ends.
func (s *Session) begin(action string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inFlight[action]; ok {
		return nil, ErrInFlight
	}

	s.inFlight[action] = struct{}{}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.inFlight, action)
	}, nil
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}

// fail records err, raises an error notification and returns err. ErrInFlight
// is returned as is.
func (s *Session) fail(ctx context.Context, action string, err error) error {
	if errors.Is(err, ErrInFlight) {
		return err
	}

	s.mu.Lock()
	s.lastErr = err.Error()
	userID := s.userIDLocked()
	s.mu.Unlock()

	slog.WarnContext(ctx, "session action failed", "action", action, "user_id", userID, "error", err)

	msg := err.Error()
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		msg = auth.Message(err)
	}

	s.notify(ctx, notify.LevelError, action+" failed: "+msg)

	return err
}

func (s *Session) succeed(ctx context.Context, msg string) {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	s.notify(ctx, notify.LevelSuccess, msg)
}

func (s *Session) notify(ctx context.Context, level notify.Level, msg string) {
	s.mu.Lock()
	userID := s.userIDLocked()
	s.mu.Unlock()

	s.notifier.Notify(ctx, notify.Notification{
		Level:   level,
		Message: msg,
		UserID:  userID,
		At:      s.deps.Now(),
	})
}

func (s *Session) userIDLocked() uuid.UUID {
	if s.user == nil {
		return uuid.Nil
	}

	return s.user.ID
}

// State returns where the session is in its lifecycle.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}

	u := *s.user

	return &u
}

// Projects returns copies of the user's projects in creation order.
func (s *Session) Projects() []*project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		c := *p
		out = append(out, &c)
	}

	return out
}

// ActiveProject returns a copy of the active project, or nil when there is none.
func (s *Session) ActiveProject() *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.activeLocked()
	if p == nil {
		return nil
	}

	c := *p

	return &c
}

func (s *Session) activeLocked() *project.Project {
	if s.activeID == uuid.Nil {
		return nil
	}

	return s.projectLocked(s.activeID)
}

func (s *Session) projectLocked(id uuid.UUID) *project.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}

	return nil
}

// Transactions returns copies of the active project's transactions in the
// order they were loaded or created.
func (s *Session) Transactions() []*transaction.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneTransactions(s.txs)
}

// Busy reports whether any action or load is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.inFlight) > 0 || s.loadingTxs || s.state == StateLoadingProjects
}

// Err returns the description of the last failure, or "" after a success.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// Notifications returns the session's recent notifications, oldest first.
func (s *Session) Notifications() []notify.Notification {
	return s.recorder.List()
}

func (s *Session) requireUser() (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, ErrNotAuthenticated
	}

	return s.user, nil
}

func cloneTransactions(txs []*transaction.Transaction) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Clone())
	}

	return out
}

func indexOfTransaction(txs []*transaction.Transaction, id uuid.UUID) int {
	return slices.IndexFunc(txs, func(tx *transaction.Transaction) bool { return tx.ID == id })
}
