package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/biztrack/internal/http/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/http/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/http/export"
	"github.com/MrJamesThe3rd/biztrack/internal/http/importcsv"
	mw "github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	"github.com/MrJamesThe3rd/biztrack/internal/http/notification"
	"github.com/MrJamesThe3rd/biztrack/internal/http/preference"
	"github.com/MrJamesThe3rd/biztrack/internal/http/project"
	"github.com/MrJamesThe3rd/biztrack/internal/http/report"
	"github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
)

// Handlers are the v1 route groups.
type Handlers struct {
	Auth          *auth.Handler
	Projects      *project.Handler
	Transactions  *transaction.Handler
	Reports       *report.Handler
	Export        *export.Handler
	Import        *importcsv.Handler
	Assistant     *assistant.Handler
	Preferences   *preference.Handler
	Notifications *notification.Handler
}

type Options struct {
	Tokens         mw.TokenValidator
	Users          mw.Users
	Sessions       mw.Sessions
	AllowedOrigins []string
	// AuthLimiter guards sign-up and sign-in. Nil disables it.
	AuthLimiter *mw.RateLimiter
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(mw.CORS(opts.AllowedOrigins))

	authenticate := mw.Authenticate(opts.Tokens)
	withSession := mw.LoadSession(opts.Users, opts.Sessions)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Group(func(r chi.Router) {
				if opts.AuthLimiter != nil {
					r.Use(opts.AuthLimiter.Middleware)
				}

				h.Auth.PublicRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				h.Auth.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/preferences", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Preferences.Routes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(withSession)

				r.Route("/projects", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Projects.Routes(r)
				})

				r.Route("/transactions", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Transactions.Routes(r)
				})

				r.Route("/reports", h.Reports.Routes)
				r.Route("/export", h.Export.Routes)
				r.Route("/import", h.Import.Routes)

				r.Route("/assistant", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Assistant.Routes(r)
				})

				r.Route("/notifications", h.Notifications.Routes)
			})
		})
	})

	return router
}
