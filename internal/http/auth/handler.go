package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

type Service interface {
	SignUp(ctx context.Context, p auth.SignUpParams) (*auth.User, error)
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignOut(ctx context.Context, userID uuid.UUID)
	User(ctx context.Context, id uuid.UUID) (*auth.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (*auth.User, error)
}

type Issuer interface {
	Issue(u *auth.User) (string, error)
}

type Handler struct {
	svc    Service
	tokens Issuer
}

func NewHandler(svc Service, tokens Issuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// PublicRoutes need no token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
}

// Routes must be mounted behind middleware.Authenticate.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signout", h.signOut)
	r.Get("/me", h.me)
	r.Patch("/me", h.updateMe)
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
	}
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.SignUp(r.Context(), auth.SignUpParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusCreated, u)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusOK, u)
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, status int, u *auth.User) {
	token, err := h.tokens.Issue(u)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, status, tokenResponse{Token: token, User: toUserResponse(u)})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, r, session.ErrNotAuthenticated)
		return
	}

	h.svc.SignOut(r.Context(), userID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, r, session.ErrNotAuthenticated)
		return
	}

	u, err := h.svc.User(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toUserResponse(u))
}

type updateMeRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, r, session.ErrNotAuthenticated)
		return
	}

	var req updateMeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.UpdateDisplayName(r.Context(), userID, req.DisplayName)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toUserResponse(u))
}
