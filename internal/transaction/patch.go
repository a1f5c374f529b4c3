package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patch is a partial update. Nil fields are left untouched. Kind is deliberately
// absent: a transaction keeps the kind it was created with.
type Patch struct {
	Name         *string
	Amount       *decimal.Decimal
	Date         *time.Time
	Note         *string
	Category     *string
	PurchaseDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Amount == nil && p.Date == nil &&
		p.Note == nil && p.Category == nil && p.PurchaseDate == nil
}

// ValidateFor checks the patch against the kind of the transaction it targets.
func (p Patch) ValidateFor(kind Kind) error {
	if p.Name != nil && *p.Name == "" {
		return ErrMissingName
	}

	if p.Amount != nil && p.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	if p.Date != nil && p.Date.IsZero() {
		return ErrMissingDate
	}

	if p.Category != nil && kind != KindExpense {
		return ErrFieldNotApplicable
	}

	if p.PurchaseDate != nil && kind != KindAsset {
		return ErrFieldNotApplicable
	}

	return nil
}

// Apply returns a copy of tx with the patch merged in.
func (p Patch) Apply(tx *Transaction) *Transaction {
	out := tx.Clone()

	if p.Name != nil {
		out.Name = *p.Name
	}

	if p.Amount != nil {
		out.Amount = *p.Amount
	}

	if p.Date != nil {
		out.Date = *p.Date
	}

	if p.Note != nil {
		out.Note = *p.Note
	}

	if p.Category != nil {
		out.Category = *p.Category
	}

	if p.PurchaseDate != nil {
		out.PurchaseDate = new(*p.PurchaseDate)
	}

	return out
}
