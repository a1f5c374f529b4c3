package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the transactions of one project at a time. Every call is
// scoped by the owning user and project.
//
//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTransactions(ctx context.Context, userID, projectID uuid.UUID) ([]*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	UpdateTransaction(ctx context.Context, userID, projectID, id uuid.UUID, patch Patch) error
	DeleteTransaction(ctx context.Context, userID, projectID, id uuid.UUID) error
}
