// Package storetest holds the behaviour every docstore.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
)

// Run exercises a store returned by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "things", "nope")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		when := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

		require.NoError(t, s.Set(ctx, "things", "a", map[string]any{"name": "Rent", "amount": "12.50", "date": when}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "a", doc.ID)
		assert.Equal(t, "Rent", docstore.String(doc.Data, "name"))
		assert.Equal(t, "12.50", docstore.String(doc.Data, "amount"))

		got, ok, err := docstore.Time(doc.Data, "date")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, when.Equal(got))
	})

	t.Run("SetReplaces", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "things", "a", map[string]any{"name": "x", "note": "n"}))
		require.NoError(t, s.Set(ctx, "things", "a", map[string]any{"name": "y"}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "y", docstore.String(doc.Data, "name"))
		assert.NotContains(t, doc.Data, "note")
	})

	t.Run("ListInCreationOrder", func(t *testing.T) {
		s := newStore(t)

		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Set(ctx, "things", id, map[string]any{"name": id}))
		}

		require.NoError(t, s.Set(ctx, "other", "z", map[string]any{"name": "z"}))
		require.NoError(t, s.Set(ctx, "things", "c", map[string]any{"name": "c2"}))

		docs, err := s.List(ctx, "things")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"c", "a", "b"}, ids(docs))
		assert.Equal(t, "c2", docstore.String(docs[0].Data, "name"))
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)

		docs, err := s.List(ctx, "things")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("MergeUpdatesFields", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "things", "a", map[string]any{"name": "x", "note": "keep"}))
		require.NoError(t, s.Merge(ctx, "things", "a", map[string]any{"name": "y"}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "y", docstore.String(doc.Data, "name"))
		assert.Equal(t, "keep", docstore.String(doc.Data, "note"))
	})

	t.Run("MergeMissing", func(t *testing.T) {
		s := newStore(t)

		err := s.Merge(ctx, "things", "nope", map[string]any{"name": "y"})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "things", "a", map[string]any{"name": "x"}))
		require.NoError(t, s.Delete(ctx, "things", "a"))
		require.NoError(t, s.Delete(ctx, "things", "a"))

		_, err := s.Get(ctx, "things", "a")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("CommitAppliesAll", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "things", "old", map[string]any{"name": "old"}))

		b := docstore.NewBatch().
			Set("things", "a", map[string]any{"name": "a"}).
			Set("things", "b", map[string]any{"name": "b"}).
			Delete("things", "old")
		require.NoError(t, s.Commit(ctx, b))

		docs, err := s.List(ctx, "things")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(docs))
	})

	t.Run("CommitDeletesCollection", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "things/1/parts", "a", map[string]any{"n": 1}))
		require.NoError(t, s.Set(ctx, "things/1/parts", "b", map[string]any{"n": 2}))
		require.NoError(t, s.Set(ctx, "things/10/parts", "c", map[string]any{"n": 3}))
		require.NoError(t, s.Set(ctx, "things", "1", map[string]any{"name": "one"}))

		b := docstore.NewBatch().
			DeleteCollection("things/1/parts").
			Delete("things", "1")
		require.NoError(t, s.Commit(ctx, b))

		parts, err := s.List(ctx, "things/1/parts")
		require.NoError(t, err)
		assert.Empty(t, parts)

		others, err := s.List(ctx, "things/10/parts")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(others))

		_, err = s.Get(ctx, "things", "1")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		// The collection can be written to again afterwards.
		require.NoError(t, s.Set(ctx, "things/1/parts", "d", map[string]any{"n": 4}))
		parts, err = s.List(ctx, "things/1/parts")
		require.NoError(t, err)
		assert.Equal(t, []string{"d"}, ids(parts))
	})

	t.Run("EmptyCommit", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Commit(ctx, docstore.NewBatch()))
	})

	t.Run("ReturnedDataIsACopy", func(t *testing.T) {
		s := newStore(t)
		data := map[string]any{"name": "x"}

		require.NoError(t, s.Set(ctx, "things", "a", data))
		data["name"] = "mutated"

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		doc.Data["name"] = "mutated again"

		again, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "x", docstore.String(again.Data, "name"))
	})
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}

	return out
}
