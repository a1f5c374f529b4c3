package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the variant of a transaction.
type Kind string

const (
	KindExpense Kind = "expense"
	KindCashIn  Kind = "cash-in"
	KindCashOut Kind = "cash-out"
	KindAsset   Kind = "asset"
)

// Kinds lists every transaction kind in display order.
var Kinds = []Kind{KindExpense, KindCashIn, KindCashOut, KindAsset}

func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindCashIn, KindCashOut, KindAsset:
		return true
	}

	return false
}

func (k Kind) String() string {
	switch k {
	case KindExpense:
		return "Expense"
	case KindCashIn:
		return "Cash In"
	case KindCashOut:
		return "Cash Out"
	case KindAsset:
		return "Asset"
	}

	return "Unknown"
}

var (
	ErrNotFound           = errors.New("transaction not found")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidAmount      = errors.New("amount must be a non-negative number")
	ErrMissingName        = errors.New("name is required")
	ErrMissingDate        = errors.New("date is required")
	ErrKindImmutable      = errors.New("transaction kind cannot be changed")
	ErrFieldNotApplicable = errors.New("field does not apply to this transaction kind")
)

// Transaction is a single money movement owned by exactly one project.
// Category is only meaningful for expenses and PurchaseDate only for assets.
type Transaction struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	UserID       uuid.UUID
	Kind         Kind
	Name         string
	Amount       decimal.Decimal
	Date         time.Time
	Note         string
	Category     string
	PurchaseDate *time.Time
	CreatedAt    time.Time
}

// Clone returns a copy that shares no pointers with t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.PurchaseDate != nil {
		c.PurchaseDate = new(*t.PurchaseDate)
	}

	return &c
}

// CreateParams carries the user-supplied fields of a new transaction.
type CreateParams struct {
	Kind         Kind
	Name         string
	Amount       decimal.Decimal
	Date         time.Time
	Note         string
	Category     string
	PurchaseDate *time.Time
}

// Validate checks the params against the rules of their kind.
func (p CreateParams) Validate() error {
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}

	if p.Name == "" {
		return ErrMissingName
	}

	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	if p.Date.IsZero() {
		return ErrMissingDate
	}

	if p.Category != "" && p.Kind != KindExpense {
		return ErrFieldNotApplicable
	}

	if p.PurchaseDate != nil && p.Kind != KindAsset {
		return ErrFieldNotApplicable
	}

	return nil
}

// New builds a transaction for the given owner with a fresh identifier.
func New(userID, projectID uuid.UUID, p CreateParams, now time.Time) *Transaction {
	tx := &Transaction{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Kind:      p.Kind,
		Name:      p.Name,
		Amount:    p.Amount,
		Date:      p.Date,
		Note:      p.Note,
		Category:  p.Category,
		CreatedAt: now,
	}

	if p.PurchaseDate != nil {
		tx.PurchaseDate = new(*p.PurchaseDate)
	}

	return tx
}
