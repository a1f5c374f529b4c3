package project

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/active", h.setActive)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type response struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        project.Type     `json:"type"`
	Currency    string           `json:"currency"`
	Tracking    project.Tracking `json:"tracking"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func toResponse(p *project.Project) response {
	return response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Currency:    p.Currency,
		Tracking:    p.Tracking,
		CreatedAt:   p.CreatedAt,
	}
}

type listResponse struct {
	Projects        []response `json:"projects"`
	ActiveProjectID *uuid.UUID `json:"activeProjectId"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	s := middleware.Session(r.Context())

	projects := s.Projects()

	resp := listResponse{Projects: make([]response, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, toResponse(p))
	}

	if active := s.ActiveProject(); active != nil {
		resp.ActiveProjectID = &active.ID
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        project.Type     `json:"type"`
	Currency    string           `json:"currency"`
	Tracking    project.Tracking `json:"tracking"`
	Activate    bool             `json:"activate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := middleware.Session(r.Context()).CreateProject(r.Context(), project.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Currency:    req.Currency,
		Tracking:    req.Tracking,
	}, req.Activate)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

type updateRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Type        *project.Type     `json:"type"`
	Currency    *string           `json:"currency"`
	Tracking    *project.Tracking `json:"tracking"`
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

	p, err := middleware.Session(r.Context()).UpdateProject(r.Context(), id, project.Patch(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, respond.BadRequest("invalid id"))
		return
	}

	if err := middleware.Session(r.Context()).DeleteProject(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setActiveRequest struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s := middleware.Session(r.Context())

	if err := s.SetActiveProject(r.Context(), req.ID); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(s.ActiveProject()))
}
