package api

import (
	"net/http"

	"graphboard/internal/api/handler"
	"graphboard/internal/api/middleware"
	"graphboard/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter builds the HTTP API. A nil tokenAuth leaves /api/jobs open;
// otherwise it requires an admin bearer token.
func NewRouter(jobService *service.JobService, tokenAuth *jwtauth.JWTAuth, debug bool) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Hello Graphboard API !"))
		})

		jobHandler := handler.NewJobHandler(jobService, debug)
		api.Group(func(jobs chi.Router) {
			if tokenAuth != nil {
				jobs.Use(jwtauth.Verifier(tokenAuth))
				jobs.Use(middleware.Authenticator)
				jobs.Use(middleware.AdminOnly)
			}
			jobs.Route("/jobs", jobHandler.RegisterRoutes)
		})
	})

	return r
}
