// Package docstore is the hierarchical document store every user-owned record
// lives in. Collections are slash-separated paths such as
// users/{userId}/projects/{projectId}/transactions.
package docstore

import (
	"context"
	"errors"
	"maps"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Document is a single record. Data holds JSON-compatible values; time.Time is
// accepted on write and may come back as an RFC 3339 string on read.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is implemented by every document store backend.
type Store interface {
	// List returns every document of a collection in creation order.
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set creates the document or replaces its data.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Merge overwrites the given top-level fields of an existing document.
	Merge(ctx context.Context, collection, id string, data map[string]any) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Commit applies every operation of the batch or none of them.
	Commit(ctx context.Context, b *Batch) error
}

type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
	// OpDeleteCollection removes every document of Collection at commit time.
	OpDeleteCollection
)

type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       map[string]any
}

// Batch collects writes to be committed atomically.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(collection, id string, data map[string]any) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Collection: collection, ID: id, Data: maps.Clone(data)})
	return b
}

func (b *Batch) Delete(collection, id string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDelete, Collection: collection, ID: id})
	return b
}

// DeleteCollection removes whatever the collection holds when the batch commits,
// including documents written after the batch was built.
func (b *Batch) DeleteCollection(collection string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDeleteCollection, Collection: collection})
	return b
}

func (b *Batch) Ops() []Op {
	return b.ops
}

func (b *Batch) Len() int {
	return len(b.ops)
}
