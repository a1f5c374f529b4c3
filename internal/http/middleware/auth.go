// Package middleware holds the HTTP middleware shared by every route group.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/http/respond"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

type contextKey string

const (
	userIDKey  contextKey = "user_id"
	sessionKey contextKey = "session"
)

// TokenValidator checks an access token. *auth.Tokens satisfies it.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Message(w, http.StatusUnauthorized, "", "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respond.Message(w, http.StatusUnauthorized, "", "invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				respond.Message(w, http.StatusUnauthorized, "", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID)))
		})
	}
}

// UserID returns the authenticated caller, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Users looks up accounts. *auth.Service satisfies it.
type Users interface {
	User(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

// Sessions hands out per-user sessions. *session.Manager satisfies it.
type Sessions interface {
	Lookup(userID uuid.UUID) (*session.Session, bool)
	Get(ctx context.Context, u *auth.User) (*session.Session, error)
}

// LoadSession attaches the caller's session, opening it on first use. It must
// run after Authenticate.
func LoadSession(users Users, sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				respond.Error(w, r, session.ErrNotAuthenticated)
				return
			}

			s, ok := sessions.Lookup(userID)
			if !ok {
				u, err := users.User(r.Context(), userID)
				if err != nil {
					respond.Error(w, r, err)
					return
				}

				s, err = sessions.Get(r.Context(), u)
				if err != nil {
					respond.Error(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
		})
	}
}

// Session returns the session attached by LoadSession.
func Session(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
