package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

type Handler struct {
	svc *assistant.Service
}

func NewHandler(svc *assistant.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/ask", h.ask)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// ask answers a question about every transaction of the active project.
func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s := middleware.Session(r.Context())

	p := s.ActiveProject()
	if p == nil {
		respond.Error(w, r, session.ErrNoActiveProject)
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question, s.Transactions(), p.Currency)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, askResponse{Answer: answer})
}
