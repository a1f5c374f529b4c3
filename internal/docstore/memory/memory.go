// Package memory is an in-process docstore.Store used by tests, the terminal
// client's demo mode and STORE_BACKEND=memory.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
)

type collection struct {
	order []string
	docs  map[string]docstore.Document
}

type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	now         func() time.Time

	// failNext, when set, makes the next write return the given error.
	failNext error
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
	}
}

// FailNextWrite makes the next Set, Merge, Delete or Commit fail with err.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failNext = err
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil

	return err
}

func (s *Store) List(_ context.Context, name string) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}

	out := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyDoc(c.docs[id]))
	}

	return out, nil
}

func (s *Store) Get(_ context.Context, name, id string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}

	doc, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}

	return copyDoc(doc), nil
}

func (s *Store) Set(_ context.Context, name, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	s.set(name, id, data)

	return nil
}

func (s *Store) Merge(_ context.Context, name, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	c, ok := s.collections[name]
	if !ok {
		return docstore.ErrNotFound
	}

	doc, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}

	merged := maps.Clone(doc.Data)
	maps.Copy(merged, data)

	doc.Data = merged
	doc.UpdatedAt = s.now()
	c.docs[id] = doc

	return nil
}

func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	s.delete(name, id)

	return nil
}

func (s *Store) Commit(_ context.Context, b *docstore.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	// Holding the lock for the whole batch makes it atomic to other callers.
	for _, op := range b.Ops() {
		switch op.Kind {
		case docstore.OpSet:
			s.set(op.Collection, op.ID, op.Data)
		case docstore.OpDelete:
			s.delete(op.Collection, op.ID)
		case docstore.OpDeleteCollection:
			delete(s.collections, op.Collection)
		}
	}

	return nil
}

func (s *Store) set(name, id string, data map[string]any) {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]docstore.Document)}
		s.collections[name] = c
	}

	now := s.now()

	doc, exists := c.docs[id]
	if !exists {
		c.order = append(c.order, id)
		doc = docstore.Document{ID: id, CreatedAt: now}
	}

	doc.Data = maps.Clone(data)
	doc.UpdatedAt = now
	c.docs[id] = doc
}

func (s *Store) delete(name, id string) {
	c, ok := s.collections[name]
	if !ok {
		return
	}

	if _, ok := c.docs[id]; !ok {
		return
	}

	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
}

func copyDoc(d docstore.Document) docstore.Document {
	d.Data = maps.Clone(d.Data)
	return d
}
