package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// SignIn loads u's projects, picks the active one and loads its transactions.
// A failed project load leaves the session ready with no data and the error recorded.
func (s *Session) SignIn(ctx context.Context, u *auth.User) error {
	done, err := s.begin("signIn")
	if err != nil {
		return err
	}
	defer done()

	user := *u

	s.mu.Lock()
	s.user = &user
	s.state = StateLoadingProjects
	s.projects = nil
	s.activeID = uuid.Nil
	s.txs = nil
	s.txProject = uuid.Nil
	s.txErr = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	return s.loadProjects(ctx, user.ID, gen)
}

// Reload refetches projects and the active project's transactions.
func (s *Session) Reload(ctx context.Context) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}

	return s.SignIn(ctx, u)
}

// SignOut forgets everything about the current user.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.state = StateUnauthenticated
	s.projects = nil
	s.activeID = uuid.Nil
	s.txs = nil
	s.txProject = uuid.Nil
	s.txErr = nil
	s.loadingTxs = false
	s.lastErr = ""
	s.generation++
}

// OnUserChanged reacts to the auth stream: nil signs out, a different user
// signs in, the same user only refreshes the profile fields.
func (s *Session) OnUserChanged(ctx context.Context, u *auth.User) error {
	if u == nil {
		s.SignOut()
		return nil
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID == u.ID {
		user := *u
		s.user = &user
		s.mu.Unlock()

		return nil
	}
	s.mu.Unlock()

	return s.SignIn(ctx, u)
}

func (s *Session) loadProjects(ctx context.Context, userID uuid.UUID, gen uint64) error {
	projects, err := s.deps.Projects.ListProjects(ctx, userID)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		s.state = StateReady
		s.mu.Unlock()

		return s.fail(ctx, "Loading projects", remoteErr("loading projects", err))
	}

	s.projects = projects
	s.state = StateReady
	s.mu.Unlock()

	active := s.pickActive(ctx, userID, projects)

	return s.activate(ctx, userID, active)
}

// pickActive returns the remembered project if it still exists, else the
// first project, else nil.
func (s *Session) pickActive(ctx context.Context, userID uuid.UUID, projects []*project.Project) *project.Project {
	if len(projects) == 0 {
		return nil
	}

	remembered, ok, err := s.deps.Prefs.Get(ctx, prefs.LastActiveProjectKey(userID))
	if err != nil {
		slog.WarnContext(ctx, "failed to read last active project", "user_id", userID, "error", err)
	}

	if ok {
		for _, p := range projects {
			if p.ID.String() == remembered {
				return p
			}
		}
	}

	return projects[0]
}

// SetActiveProject switches to the project with the given id, remembers the
// choice and loads its transactions. The previous project's transactions are
// dropped before the load starts.
func (s *Session) SetActiveProject(ctx context.Context, id uuid.UUID) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}

	s.mu.Lock()
	p := s.projectLocked(id)
	s.mu.Unlock()

	if p == nil {
		return s.fail(ctx, "Switching project", ErrProjectNotFound)
	}

	return s.activate(ctx, u.ID, p)
}

// activate makes p (or nothing, when p is nil) the active project.
func (s *Session) activate(ctx context.Context, userID uuid.UUID, p *project.Project) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.txs = nil
	s.txErr = nil

	if p == nil {
		s.activeID = uuid.Nil
		s.txProject = uuid.Nil
		s.loadingTxs = false
		s.mu.Unlock()

		if err := s.deps.Prefs.Delete(ctx, prefs.LastActiveProjectKey(userID)); err != nil {
			slog.WarnContext(ctx, "failed to clear last active project", "user_id", userID, "error", err)
		}

		return nil
	}

	s.activeID = p.ID
	s.txProject = p.ID
	s.loadingTxs = true
	s.mu.Unlock()

	if err := s.deps.Prefs.Set(ctx, prefs.LastActiveProjectKey(userID), p.ID.String()); err != nil {
		slog.WarnContext(ctx, "failed to remember last active project", "user_id", userID, "error", err)
	}

	return s.loadTransactions(ctx, userID, p.ID, gen)
}

func (s *Session) loadTransactions(ctx context.Context, userID, projectID uuid.UUID, gen uint64) error {
	txs, err := s.deps.Transactions.ListTransactions(ctx, userID, projectID)

	s.mu.Lock()
	if s.generation != gen {
		// Another switch happened while this load was running.
		s.mu.Unlock()
		return nil
	}

	s.loadingTxs = false

	if err != nil {
		s.txErr = remoteErr("loading transactions", err)
		txErr := s.txErr
		s.mu.Unlock()

		return s.fail(ctx, "Loading transactions", txErr)
	}

	// Anything already in s.txs was written after the load started.
	s.txs = mergeLoaded(txs, s.txs)
	s.mu.Unlock()

	return nil
}

// mergeLoaded appends to loaded the written transactions it does not contain.
func mergeLoaded(loaded, written []*transaction.Transaction) []*transaction.Transaction {
	for _, tx := range written {
		if indexOfTransaction(loaded, tx.ID) < 0 {
			loaded = append(loaded, tx)
		}
	}

	return loaded
}
