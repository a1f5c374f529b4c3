package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/biztrack/internal/report"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.full)
	r.Get("/summary", h.summary)
	r.Get("/trend", h.trend)
	r.Get("/categories", h.categories)
}

type intervalResponse struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type trendResponse struct {
	Granularity report.Granularity `json:"granularity"`
	Buckets     []report.Bucket    `json:"buckets"`
}

type fullResponse struct {
	Interval   intervalResponse  `json:"interval"`
	Summary    report.Summary    `json:"summary"`
	Trend      trendResponse     `json:"trend"`
	Categories []report.Category `json:"categories"`
	History    []httptx.Response `json:"history"`
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	f, kind, err := httptx.ParseQuery(r)
	if err != nil {
		respond.Error(w, r, err)
		return report.Report{}, false
	}

	rep, err := middleware.Session(r.Context()).Report(f, kind)
	if err != nil {
		respond.Error(w, r, err)
		return report.Report{}, false
	}

	return rep, true
}

func (h *Handler) full(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	resp := fullResponse{
		Summary:    rep.Summary,
		Trend:      trendResponse{Granularity: rep.Granularity, Buckets: rep.Trend},
		Categories: rep.Categories,
		History:    httptx.ToResponseList(rep.History),
	}

	if !rep.Interval.Unbounded {
		resp.Interval.Start = new(rep.Interval.Start.Format(time.DateOnly))
		resp.Interval.End = new(rep.Interval.End.Format(time.DateOnly))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.build(w, r); ok {
		respond.JSON(w, http.StatusOK, rep.Summary)
	}
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.build(w, r); ok {
		respond.JSON(w, http.StatusOK, trendResponse{Granularity: rep.Granularity, Buckets: rep.Trend})
	}
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.build(w, r); ok {
		respond.JSON(w, http.StatusOK, rep.Categories)
	}
}
