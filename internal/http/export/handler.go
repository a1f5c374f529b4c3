package export

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/export"
	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
)

// ArchiveHeader carries the archive location of a download when archiving is on.
const ArchiveHeader = "X-Export-Archive"

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	f, kind, err := httptx.ParseQuery(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	userID, _ := middleware.UserID(r.Context())

	res, err := h.svc.Export(r.Context(), userID, middleware.Session(r.Context()), f, kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if res.Archive != "" {
		w.Header().Set(ArchiveHeader, res.Archive)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte(res.Content))
}

type summaryResponse struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Summary  string `json:"summary"`
}

// summary describes what a download would contain without archiving it.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, kind, err := httptx.ParseQuery(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	exp, err := middleware.Session(r.Context()).ExportCSV(f, kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{
		Filename: exp.Filename,
		Rows:     len(exp.Rows),
		Summary:  export.Summary(exp.Rows, exp.Currency),
	})
}
