package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	"github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/project/store"
)

func newProject(userID uuid.UUID, name string) *project.Project {
	return project.New(userID, project.CreateParams{Name: name}.Normalize(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
}

func TestStore_CreateListUpdate(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	userID := uuid.New()

	a := newProject(userID, "Bakery")
	b := newProject(userID, "Home")
	b.Type = project.TypePersonal
	b.Currency = "EUR"
	b.Tracking = project.TrackingExpenses

	require.NoError(t, s.CreateProject(ctx, a))
	require.NoError(t, s.CreateProject(ctx, b))

	got, err := s.ListProjects(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, "Home", got[1].Name)
	assert.Equal(t, "EUR", got[1].Currency)
	assert.Equal(t, project.TypePersonal, got[1].Type)
	assert.Equal(t, project.TrackingExpenses, got[1].Tracking)

	require.NoError(t, s.UpdateProject(ctx, userID, a.ID, project.Patch{Name: new("Bakery Ltd"), Currency: new("GBP")}))

	got, err = s.ListProjects(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Bakery Ltd", got[0].Name)
	assert.Equal(t, "GBP", got[0].Currency)

	err = s.UpdateProject(ctx, userID, uuid.New(), project.Patch{Name: new("x")})
	assert.ErrorIs(t, err, project.ErrNotFound)

	others, err := s.ListProjects(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	s := store.New(docs)
	userID := uuid.New()

	doomed := newProject(userID, "Doomed")
	kept := newProject(userID, "Kept")
	require.NoError(t, s.CreateProject(ctx, doomed))
	require.NoError(t, s.CreateProject(ctx, kept))

	for i := range 3 {
		require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, doomed.ID), uuid.NewString(), map[string]any{"n": i}))
	}

	require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, kept.ID), uuid.NewString(), map[string]any{"n": 0}))

	require.NoError(t, s.DeleteProject(ctx, userID, doomed.ID))

	left, err := docs.List(ctx, docstore.Transactions(userID, doomed.ID))
	require.NoError(t, err)
	assert.Empty(t, left)

	survivors, err := docs.List(ctx, docstore.Transactions(userID, kept.ID))
	require.NoError(t, err)
	assert.Len(t, survivors, 1)

	projects, err := s.ListProjects(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, kept.ID, projects[0].ID)

	assert.ErrorIs(t, s.DeleteProject(ctx, userID, doomed.ID), project.ErrNotFound)
}

// racingDocs writes a document just before the next batch commits.
type racingDocs struct {
	docstore.Store
	before func()
}

func (r *racingDocs) Commit(ctx context.Context, b *docstore.Batch) error {
	if r.before != nil {
		r.before()
		r.before = nil
	}

	return r.Store.Commit(ctx, b)
}

func TestStore_DeleteProjectTakesLateTransactions(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	userID := uuid.New()

	p := newProject(userID, "Shop")
	require.NoError(t, store.New(docs).CreateProject(ctx, p))
	require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, p.ID), uuid.NewString(), map[string]any{"n": 1}))

	racing := &racingDocs{Store: docs}
	racing.before = func() {
		require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, p.ID), uuid.NewString(), map[string]any{"n": 2}))
	}

	require.NoError(t, store.New(racing).DeleteProject(ctx, userID, p.ID))

	left, err := docs.List(ctx, docstore.Transactions(userID, p.ID))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestStore_DeleteProjectIsAtomic(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	s := store.New(docs)
	userID := uuid.New()

	p := newProject(userID, "Shop")
	require.NoError(t, s.CreateProject(ctx, p))
	require.NoError(t, docs.Set(ctx, docstore.Transactions(userID, p.ID), uuid.NewString(), map[string]any{"n": 1}))

	docs.FailNextWrite(errors.New("offline"))
	require.Error(t, s.DeleteProject(ctx, userID, p.ID))

	txs, err := docs.List(ctx, docstore.Transactions(userID, p.ID))
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	projects, err := s.ListProjects(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}
