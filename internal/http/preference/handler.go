package preference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/money"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
)

type Handler struct {
	prefs prefs.Store
}

func NewHandler(store prefs.Store) *Handler {
	return &Handler{prefs: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/currency", h.currency)
	r.Put("/currency", h.setCurrency)
}

type currencyResponse struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
}

func currencyOf(code string) currencyResponse {
	return currencyResponse{Currency: code, Symbol: money.Symbol(code)}
}

// currency returns the caller's preferred currency for new projects.
func (h *Handler) currency(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	code, ok, err := h.prefs.Get(r.Context(), prefs.PreferredCurrencyKey(userID))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !ok {
		code = money.DefaultCurrency
	}

	respond.JSON(w, http.StatusOK, currencyOf(code))
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) setCurrency(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req setCurrencyRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if !money.ValidCode(req.Currency) {
		respond.Error(w, r, project.ErrInvalidCurrency)
		return
	}

	code := money.Normalize(req.Currency)

	if err := h.prefs.Set(r.Context(), prefs.PreferredCurrencyKey(userID), code); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, currencyOf(code))
}
