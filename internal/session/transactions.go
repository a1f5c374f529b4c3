package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// activeScope returns the user and active project id a transaction write targets.
func (s *Session) activeScope() (uuid.UUID, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return uuid.Nil, uuid.Nil, ErrNotAuthenticated
	}

	if s.activeLocked() == nil {
		return uuid.Nil, uuid.Nil, ErrNoActiveProject
	}

	// Writes wait for the active project's transactions to finish loading.
	if s.loadingTxs {
		return uuid.Nil, uuid.Nil, ErrInFlight
	}

	return s.user.ID, s.activeID, nil
}

// CreateTransaction adds a transaction to the active project.
func (s *Session) CreateTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	done, err := s.begin("createTransaction")
	if err != nil {
		return nil, err
	}
	defer done()

	userID, projectID, err := s.activeScope()
	if err != nil {
		return nil, s.fail(ctx, "Adding transaction", err)
	}

	if err := params.Validate(); err != nil {
		return nil, s.fail(ctx, "Adding transaction", err)
	}

	tx := transaction.New(userID, projectID, params, s.deps.Now())

	if err := s.deps.Transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, s.fail(ctx, "Adding transaction", remoteErr("creating transaction", err))
	}

	s.mu.Lock()
	if s.txProject == projectID {
		s.txs = append(s.txs, tx.Clone())
	}
	s.mu.Unlock()

	s.succeed(ctx, fmt.Sprintf("%s %q added", tx.Kind, tx.Name))

	return tx, nil
}

// EditTransaction applies a partial update to a transaction of the active project.
func (s *Session) EditTransaction(ctx context.Context, id uuid.UUID, patch transaction.Patch) (*transaction.Transaction, error) {
	done, err := s.begin("editTransaction:" + id.String())
	if err != nil {
		return nil, err
	}
	defer done()

	userID, projectID, err := s.activeScope()
	if err != nil {
		return nil, s.fail(ctx, "Updating transaction", err)
	}

	s.mu.Lock()
	i := indexOfTransaction(s.txs, id)
	var current *transaction.Transaction
	if i >= 0 {
		current = s.txs[i].Clone()
	}
	s.mu.Unlock()

	if current == nil {
		return nil, s.fail(ctx, "Updating transaction", ErrTransactionNotFound)
	}

	if err := patch.ValidateFor(current.Kind); err != nil {
		return nil, s.fail(ctx, "Updating transaction", err)
	}

	if err := s.deps.Transactions.UpdateTransaction(ctx, userID, projectID, id, patch); err != nil {
		return nil, s.fail(ctx, "Updating transaction", remoteErr("updating transaction", err))
	}

	s.mu.Lock()
	var updated *transaction.Transaction
	if s.txProject == projectID {
		if i := indexOfTransaction(s.txs, id); i >= 0 {
			updated = patch.Apply(s.txs[i])
			s.txs[i] = updated
		}
	}
	s.mu.Unlock()

	if updated == nil {
		updated = patch.Apply(current)
	}

	s.succeed(ctx, "Transaction updated")

	return updated.Clone(), nil
}

// DeleteTransaction removes a transaction of the active project.
func (s *Session) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	done, err := s.begin("deleteTransaction:" + id.String())
	if err != nil {
		return err
	}
	defer done()

	userID, projectID, err := s.activeScope()
	if err != nil {
		return s.fail(ctx, "Deleting transaction", err)
	}

	s.mu.Lock()
	found := indexOfTransaction(s.txs, id) >= 0
	s.mu.Unlock()

	if !found {
		return s.fail(ctx, "Deleting transaction", ErrTransactionNotFound)
	}

	if err := s.deps.Transactions.DeleteTransaction(ctx, userID, projectID, id); err != nil {
		return s.fail(ctx, "Deleting transaction", remoteErr("deleting transaction", err))
	}

	s.mu.Lock()
	if s.txProject == projectID {
		if i := indexOfTransaction(s.txs, id); i >= 0 {
			s.txs = append(s.txs[:i:i], s.txs[i+1:]...)
		}
	}
	s.mu.Unlock()

	s.succeed(ctx, "Transaction deleted")

	return nil
}

// ImportTransactions adds every row to the active project in one atomic write.
// Nothing is added when any row is invalid or the write fails.
func (s *Session) ImportTransactions(ctx context.Context, rows []transaction.CreateParams) ([]*transaction.Transaction, error) {
	done, err := s.begin("importTransactions")
	if err != nil {
		return nil, err
	}
	defer done()

	userID, projectID, err := s.activeScope()
	if err != nil {
		return nil, s.fail(ctx, "Importing transactions", err)
	}

	now := s.deps.Now()

	txs := make([]*transaction.Transaction, 0, len(rows))
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, s.fail(ctx, "Importing transactions", fmt.Errorf("row %d: %w", i+1, err))
		}

		txs = append(txs, transaction.New(userID, projectID, row, now))
	}

	if len(txs) == 0 {
		return txs, nil
	}

	if err := s.deps.Transactions.CreateTransactions(ctx, txs); err != nil {
		return nil, s.fail(ctx, "Importing transactions", remoteErr("importing transactions", err))
	}

	s.mu.Lock()
	if s.txProject == projectID {
		s.txs = append(s.txs, cloneTransactions(txs)...)
	}
	s.mu.Unlock()

	s.succeed(ctx, fmt.Sprintf("Imported %d transactions", len(txs)))

	return txs, nil
}
