package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// Document field names.
const (
	fieldKind         = "type"
	fieldName         = "name"
	fieldAmount       = "amount"
	fieldDate         = "date"
	fieldNote         = "note"
	fieldCategory     = "category"
	fieldPurchaseDate = "purchaseDate"
	fieldProjectID    = "projectId"
	fieldUserID       = "userId"
	fieldCreatedAt    = "createdAt"
)

type Store struct {
	docs docstore.Store
}

var _ transaction.Repository = (*Store)(nil)

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

func (s *Store) ListTransactions(ctx context.Context, userID, projectID uuid.UUID) ([]*transaction.Transaction, error) {
	docs, err := s.docs.List(ctx, docstore.Transactions(userID, projectID))
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(docs))

	for _, doc := range docs {
		tx, err := fromDocument(doc, userID, projectID)
		if err != nil {
			slog.Warn("skipping malformed transaction", "transaction_id", doc.ID, "error", err)
			continue
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := s.docs.Set(ctx, docstore.Transactions(tx.UserID, tx.ProjectID), tx.ID.String(), toDocument(tx)); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

// CreateTransactions writes every transaction in one atomic batch.
func (s *Store) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	b := docstore.NewBatch()
	for _, tx := range txs {
		b.Set(docstore.Transactions(tx.UserID, tx.ProjectID), tx.ID.String(), toDocument(tx))
	}

	if err := s.docs.Commit(ctx, b); err != nil {
		return fmt.Errorf("creating transactions: %w", err)
	}

	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, userID, projectID, id uuid.UUID, patch transaction.Patch) error {
	fields := patchFields(patch)
	if len(fields) == 0 {
		return nil
	}

	err := s.docs.Merge(ctx, docstore.Transactions(userID, projectID), id.String(), fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, projectID, id uuid.UUID) error {
	if err := s.docs.Delete(ctx, docstore.Transactions(userID, projectID), id.String()); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

func toDocument(tx *transaction.Transaction) map[string]any {
	data := map[string]any{
		fieldKind:      string(tx.Kind),
		fieldName:      tx.Name,
		fieldAmount:    tx.Amount.String(),
		fieldDate:      tx.Date,
		fieldNote:      tx.Note,
		fieldProjectID: tx.ProjectID.String(),
		fieldUserID:    tx.UserID.String(),
		fieldCreatedAt: tx.CreatedAt,
	}

	switch tx.Kind {
	case transaction.KindExpense:
		data[fieldCategory] = tx.Category
	case transaction.KindAsset:
		if tx.PurchaseDate != nil {
			data[fieldPurchaseDate] = *tx.PurchaseDate
		}
	}

	return data
}

func patchFields(p transaction.Patch) map[string]any {
	fields := map[string]any{}

	if p.Name != nil {
		fields[fieldName] = *p.Name
	}

	if p.Amount != nil {
		fields[fieldAmount] = p.Amount.String()
	}

	if p.Date != nil {
		fields[fieldDate] = *p.Date
	}

	if p.Note != nil {
		fields[fieldNote] = *p.Note
	}

	if p.Category != nil {
		fields[fieldCategory] = *p.Category
	}

	if p.PurchaseDate != nil {
		fields[fieldPurchaseDate] = *p.PurchaseDate
	}

	return fields
}

// fromDocument maps a stored document back to a transaction. A missing date is
// kept as the zero time so the aggregator can report it; a malformed one is an error.
func fromDocument(doc docstore.Document, userID, projectID uuid.UUID) (*transaction.Transaction, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing id: %w", err)
	}

	kind := transaction.Kind(docstore.String(doc.Data, fieldKind))
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", transaction.ErrInvalidKind, kind)
	}

	amount, err := docstore.Decimal(doc.Data, fieldAmount)
	if err != nil {
		return nil, err
	}

	date, _, err := docstore.Time(doc.Data, fieldDate)
	if err != nil {
		return nil, err
	}

	createdAt, ok, err := docstore.Time(doc.Data, fieldCreatedAt)
	if err != nil || !ok {
		createdAt = doc.CreatedAt
	}

	tx := &transaction.Transaction{
		ID:        id,
		ProjectID: projectID,
		UserID:    userID,
		Kind:      kind,
		Name:      docstore.String(doc.Data, fieldName),
		Amount:    amount,
		Date:      date,
		Note:      docstore.String(doc.Data, fieldNote),
		CreatedAt: createdAt,
	}

	switch kind {
	case transaction.KindExpense:
		tx.Category = docstore.String(doc.Data, fieldCategory)
	case transaction.KindAsset:
		purchased, ok, err := docstore.Time(doc.Data, fieldPurchaseDate)
		if err != nil {
			return nil, err
		}

		if ok {
			tx.PurchaseDate = &purchased
		}
	}

	return tx, nil
}
