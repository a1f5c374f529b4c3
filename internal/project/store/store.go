package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldType        = "type"
	fieldCurrency    = "currency"
	fieldTracking    = "tracking"
	fieldUserID      = "userId"
	fieldCreatedAt   = "createdAt"
)

type Store struct {
	docs docstore.Store
}

var _ project.Repository = (*Store)(nil)

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

func (s *Store) ListProjects(ctx context.Context, userID uuid.UUID) ([]*project.Project, error) {
	docs, err := s.docs.List(ctx, docstore.Projects(userID))
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]*project.Project, 0, len(docs))

	for _, doc := range docs {
		p, err := fromDocument(doc, userID)
		if err != nil {
			slog.Warn("skipping malformed project", "project_id", doc.ID, "error", err)
			continue
		}

		projects = append(projects, p)
	}

	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	data := map[string]any{
		fieldName:        p.Name,
		fieldDescription: p.Description,
		fieldType:        string(p.Type),
		fieldCurrency:    p.Currency,
		fieldTracking:    string(p.Tracking),
		fieldUserID:      p.UserID.String(),
		fieldCreatedAt:   p.CreatedAt,
	}

	if err := s.docs.Set(ctx, docstore.Projects(p.UserID), p.ID.String(), data); err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) UpdateProject(ctx context.Context, userID, id uuid.UUID, patch project.Patch) error {
	fields := map[string]any{}

	if patch.Name != nil {
		fields[fieldName] = *patch.Name
	}

	if patch.Description != nil {
		fields[fieldDescription] = *patch.Description
	}

	if patch.Type != nil {
		fields[fieldType] = string(*patch.Type)
	}

	if patch.Currency != nil {
		fields[fieldCurrency] = *patch.Currency
	}

	if patch.Tracking != nil {
		fields[fieldTracking] = string(*patch.Tracking)
	}

	if len(fields) == 0 {
		return nil
	}

	if err := s.docs.Merge(ctx, docstore.Projects(userID), id.String(), fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return project.ErrNotFound
		}

		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// DeleteProject removes the project document and every transaction document
// under it in one batch.
func (s *Store) DeleteProject(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.docs.Get(ctx, docstore.Projects(userID), id.String()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return project.ErrNotFound
		}

		return fmt.Errorf("getting project: %w", err)
	}

	b := docstore.NewBatch().
		DeleteCollection(docstore.Transactions(userID, id)).
		Delete(docstore.Projects(userID), id.String())

	if err := s.docs.Commit(ctx, b); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}

func fromDocument(doc docstore.Document, userID uuid.UUID) (*project.Project, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing id: %w", err)
	}

	createdAt, ok, err := docstore.Time(doc.Data, fieldCreatedAt)
	if err != nil || !ok {
		createdAt = doc.CreatedAt
	}

	p := project.CreateParams{
		Name:        docstore.String(doc.Data, fieldName),
		Description: docstore.String(doc.Data, fieldDescription),
		Type:        project.Type(docstore.String(doc.Data, fieldType)),
		Currency:    docstore.String(doc.Data, fieldCurrency),
		Tracking:    project.Tracking(docstore.String(doc.Data, fieldTracking)),
	}.Normalize()

	if p.Name == "" {
		return nil, project.ErrMissingName
	}

	return &project.Project{
		ID:          id,
		UserID:      userID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Currency:    p.Currency,
		Tracking:    p.Tracking,
		CreatedAt:   createdAt,
	}, nil
}
