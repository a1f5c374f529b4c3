package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/notify"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type listResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Busy          bool                  `json:"busy"`
	Error         string                `json:"error,omitempty"`
}

// list reports the session's recent notifications along with its busy and
// error state, which clients poll after a mutation.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	s := middleware.Session(r.Context())

	notes := s.Notifications()
	if notes == nil {
		notes = []notify.Notification{}
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Notifications: notes,
		Busy:          s.Busy(),
		Error:         s.Err(),
	})
}
