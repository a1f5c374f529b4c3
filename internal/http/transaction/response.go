package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type Response struct {
	ID           uuid.UUID        `json:"id"`
	ProjectID    uuid.UUID        `json:"projectId"`
	Type         transaction.Kind `json:"type"`
	Name         string           `json:"name"`
	Amount       decimal.Decimal  `json:"amount"`
	Date         string           `json:"date"`
	Note         string           `json:"note"`
	Category     string           `json:"category,omitempty"`
	PurchaseDate string           `json:"purchaseDate,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func ToResponse(tx *transaction.Transaction) Response {
	resp := Response{
		ID:        tx.ID,
		ProjectID: tx.ProjectID,
		Type:      tx.Kind,
		Name:      tx.Name,
		Amount:    tx.Amount,
		Date:      tx.Date.Format(time.DateOnly),
		Note:      tx.Note,
		Category:  tx.Category,
		CreatedAt: tx.CreatedAt,
	}

	if tx.PurchaseDate != nil {
		resp.PurchaseDate = tx.PurchaseDate.Format(time.DateOnly)
	}

	return resp
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	out := make([]Response, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToResponse(tx))
	}

	return out
}
