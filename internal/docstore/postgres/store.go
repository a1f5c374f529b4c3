// Package postgres stores documents as JSONB rows in a single table keyed by
// collection path and document id.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
)

type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertQuery = `
	INSERT INTO documents (collection, id, data, created_at, updated_at)
	VALUES ($1, $2, $3::jsonb, NOW(), NOW())
	ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
`

const deleteQuery = `DELETE FROM documents WHERE collection = $1 AND id = $2`

const deleteCollectionQuery = `DELETE FROM documents WHERE collection = $1`

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}

		return docstore.Document{}, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return set(ctx, s.db, collection, id, data)
}

func (s *Store) Merge(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	res, err := s.db.ExecContext(ctx, query, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("merging document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("merging document: %w", err)
	}

	if n == 0 {
		return docstore.ErrNotFound
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, collection, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	return nil
}

func (s *Store) Commit(ctx context.Context, b *docstore.Batch) error {
	if b.Len() == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	defer dbTx.Rollback()

	for _, op := range b.Ops() {
		switch op.Kind {
		case docstore.OpSet:
			if err := set(ctx, dbTx, op.Collection, op.ID, op.Data); err != nil {
				return err
			}
		case docstore.OpDelete:
			if _, err := dbTx.ExecContext(ctx, deleteQuery, op.Collection, op.ID); err != nil {
				return fmt.Errorf("deleting document: %w", err)
			}
		case docstore.OpDeleteCollection:
			if _, err := dbTx.ExecContext(ctx, deleteCollectionQuery, op.Collection); err != nil {
				return fmt.Errorf("deleting collection: %w", err)
			}
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	return nil
}

func set(ctx context.Context, e execer, collection, id string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	if _, err := e.ExecContext(ctx, upsertQuery, collection, id, string(raw)); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (docstore.Document, error) {
	var (
		doc docstore.Document
		raw []byte
	)

	if err := s.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return docstore.Document{}, err
	}

	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return docstore.Document{}, fmt.Errorf("decoding document %s: %w", doc.ID, err)
	}

	return doc, nil
}
