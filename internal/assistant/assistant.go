// Package assistant answers free-form questions about a project's
// transactions. The answer comes from an opaque Answerer and is returned
// verbatim.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	ErrUnavailable   = errors.New("assistant is not configured")
)

// Transaction is the wire form of a transaction sent to the answerer.
type Transaction struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Name   string  `json:"name"`
	Date   string  `json:"date"`
	Note   string  `json:"note"`
}

type Request struct {
	Question     string        `json:"question"`
	Transactions []Transaction `json:"transactions"`
	Currency     string        `json:"currency"`
}

type Answerer interface {
	Answer(ctx context.Context, req Request) (string, error)
}

// Unavailable is the Answerer used when no model is configured.
type Unavailable struct{}

func (Unavailable) Answer(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// Sanitize converts txs to their wire form: RFC 3339 dates, plain numbers
// and empty notes instead of missing ones.
func Sanitize(txs []*transaction.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))

	for _, tx := range txs {
		out = append(out, Transaction{
			ID:     tx.ID.String(),
			Type:   string(tx.Kind),
			Amount: tx.Amount.InexactFloat64(),
			Name:   tx.Name,
			Date:   tx.Date.Format(time.RFC3339),
			Note:   tx.Note,
		})
	}

	return out
}

type Service struct {
	answerer Answerer
}

func NewService(answerer Answerer) *Service {
	return &Service{answerer: answerer}
}

// Ask sends question together with txs to the answerer.
func (s *Service) Ask(ctx context.Context, question string, txs []*transaction.Transaction, currency string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	answer, err := s.answerer.Answer(ctx, Request{
		Question:     question,
		Transactions: Sanitize(txs),
		Currency:     currency,
	})
	if err != nil {
		return "", fmt.Errorf("asking assistant: %w", err)
	}

	return answer, nil
}
