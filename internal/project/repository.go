package project

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists a user's projects. DeleteProject removes the project and
// every one of its transactions in a single atomic step.
//
//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=project
type Repository interface {
	ListProjects(ctx context.Context, userID uuid.UUID) ([]*Project, error)
	CreateProject(ctx context.Context, p *Project) error
	UpdateProject(ctx context.Context, userID, id uuid.UUID, patch Patch) error
	DeleteProject(ctx context.Context, userID, id uuid.UUID) error
}
