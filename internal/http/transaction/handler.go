package transaction

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// ParseQuery reads the date filter and optional kind shared by list, report
// and export endpoints.
func ParseQuery(r *http.Request) (datefilter.Filter, transaction.Kind, error) {
	q := r.URL.Query()

	f := datefilter.Parse(q.Get("filter"), q.Get("date"), q.Get("start"), q.Get("end"))

	kind := transaction.Kind(q.Get("kind"))
	if kind != "" && !kind.Valid() {
		return datefilter.Filter{}, "", transaction.ErrInvalidKind
	}

	return f, kind, nil
}

// list returns the filtered history of the active project, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, kind, err := ParseQuery(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rep, err := middleware.Session(r.Context()).Report(f, kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(rep.History))
}

type createRequest struct {
	Type         transaction.Kind `json:"type"`
	Name         string           `json:"name"`
	Amount       decimal.Decimal  `json:"amount"`
	Date         string           `json:"date"`
	Note         string           `json:"note"`
	Category     string           `json:"category"`
	PurchaseDate *string          `json:"purchaseDate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params := transaction.CreateParams{
		Kind:     req.Type,
		Name:     req.Name,
		Amount:   req.Amount,
		Date:     date,
		Note:     req.Note,
		Category: req.Category,
	}

	if req.PurchaseDate != nil {
		pd, err := parseDate(*req.PurchaseDate)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.PurchaseDate = &pd
	}

	tx, err := middleware.Session(r.Context()).CreateTransaction(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

type updateRequest struct {
	Type         *transaction.Kind `json:"type"`
	Name         *string           `json:"name"`
	Amount       *decimal.Decimal  `json:"amount"`
	Date         *string           `json:"date"`
	Note         *string           `json:"note"`
	Category     *string           `json:"category"`
	PurchaseDate *string           `json:"purchaseDate"`
}

func (req updateRequest) patch() (transaction.Patch, error) {
	p := transaction.Patch{
		Name:     req.Name,
		Amount:   req.Amount,
		Note:     req.Note,
		Category: req.Category,
	}

	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return transaction.Patch{}, err
		}

		p.Date = &d
	}

	if req.PurchaseDate != nil {
		d, err := parseDate(*req.PurchaseDate)
		if err != nil {
			return transaction.Patch{}, err
		}

		p.PurchaseDate = &d
	}

	return p, nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, respond.BadRequest("invalid id"))
		return
	}

	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Type != nil {
		respond.Error(w, r, transaction.ErrKindImmutable)
		return
	}

	patch, err := req.patch()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := middleware.Session(r.Context()).EditTransaction(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, respond.BadRequest("invalid id"))
		return
	}

	if err := middleware.Session(r.Context()).DeleteTransaction(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseDate accepts a calendar day or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := datefilter.ParseDay(s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, transaction.ErrMissingDate
	}

	return t, nil
}
