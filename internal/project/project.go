package project

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/money"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

// Type only changes the wording the clients use.
type Type string

const (
	TypePersonal Type = "personal"
	TypeBusiness Type = "business"
)

func (t Type) Valid() bool {
	return t == TypePersonal || t == TypeBusiness
}

// Tracking selects which transaction kinds a project surfaces.
type Tracking string

const (
	TrackingExpenses Tracking = "expenses"
	TrackingCashflow Tracking = "cashflow"
	TrackingAll      Tracking = "all"
)

func (t Tracking) Valid() bool {
	switch t {
	case TrackingExpenses, TrackingCashflow, TrackingAll:
		return true
	}

	return false
}

// Kinds returns the transaction kinds visible under this tracking preference.
func (t Tracking) Kinds() []transaction.Kind {
	switch t {
	case TrackingExpenses:
		return []transaction.Kind{transaction.KindExpense}
	case TrackingCashflow:
		return []transaction.Kind{transaction.KindExpense, transaction.KindCashIn, transaction.KindCashOut}
	}

	return transaction.Kinds
}

// Shows reports whether kind is visible under this tracking preference.
func (t Tracking) Shows(kind transaction.Kind) bool {
	for _, k := range t.Kinds() {
		if k == kind {
			return true
		}
	}

	return false
}

var (
	ErrNotFound        = errors.New("project not found")
	ErrMissingName     = errors.New("project name is required")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidType     = errors.New("invalid project type")
	ErrInvalidTracking = errors.New("invalid tracking preference")
)

type Project struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	Type        Type
	Currency    string
	Tracking    Tracking
	CreatedAt   time.Time
}

type CreateParams struct {
	Name        string
	Description string
	Type        Type
	Currency    string
	Tracking    Tracking
}

// Normalize fills in defaults for omitted optional fields.
func (p CreateParams) Normalize() CreateParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))

	if p.Type == "" {
		p.Type = TypeBusiness
	}

	if p.Currency == "" {
		p.Currency = money.DefaultCurrency
	}

	if p.Tracking == "" {
		p.Tracking = TrackingAll
	}

	return p
}

func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}

	if !money.ValidCode(p.Currency) {
		return ErrInvalidCurrency
	}

	if !p.Type.Valid() {
		return ErrInvalidType
	}

	if !p.Tracking.Valid() {
		return ErrInvalidTracking
	}

	return nil
}

func New(userID uuid.UUID, p CreateParams, now time.Time) *Project {
	return &Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Currency:    p.Currency,
		Tracking:    p.Tracking,
		CreatedAt:   now,
	}
}

// Patch is a partial project update; nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Type        *Type
	Currency    *string
	Tracking    *Tracking
}

func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrMissingName
	}

	if p.Currency != nil && !money.ValidCode(*p.Currency) {
		return ErrInvalidCurrency
	}

	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}

	if p.Tracking != nil && !p.Tracking.Valid() {
		return ErrInvalidTracking
	}

	return nil
}

// Apply returns a copy of pr with the patch merged in.
func (p Patch) Apply(pr *Project) *Project {
	out := *pr

	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}

	if p.Description != nil {
		out.Description = *p.Description
	}

	if p.Type != nil {
		out.Type = *p.Type
	}

	if p.Currency != nil {
		out.Currency = strings.ToUpper(*p.Currency)
	}

	if p.Tracking != nil {
		out.Tracking = *p.Tracking
	}

	return &out
}
