package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/biztrack/internal/importer"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported     int               `json:"imported"`
	Transactions []httptx.Response `json:"transactions"`
}

// importCSV adds every row of the uploaded "file" to the active project in
// one batch. The optional "format" field picks the parser.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, respond.BadRequest("failed to parse form: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, respond.BadRequest("file is required"))
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := middleware.Session(r.Context()).ImportTransactions(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported:     len(txs),
		Transactions: httptx.ToResponseList(txs),
	})
}
