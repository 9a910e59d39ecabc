package router

import (
	"time"

	"exam-service/internal/handler"
	"exam-service/internal/middleware"
	"exam-service/pkg/cache"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func New(sessionH *handler.SessionHandler, admissionH *handler.AdmissionHandler, auth *middleware.AuthMiddleware, store *cache.Cache) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RateLimiter(store, 100, time.Minute, 10*time.Minute, "global"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public: the client resolves the geofence before login.
	r.Get("/api/v1/exam/admission/{token}", admissionH.Resolve)

	// Candidate routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Require)
		r.Use(middleware.RateLimiter(store, 30, time.Minute, 5*time.Minute, "session"))

		r.Post("/api/v1/exam/admission/{token}/verify", admissionH.Verify)
		r.Post("/api/v1/exam/session/start", sessionH.Start)
		r.Post("/api/v1/exam/session/end", sessionH.End)
		r.Post("/api/v1/exam/session/complete", sessionH.Complete)
		r.Get("/api/v1/exam/session", sessionH.GetOwn)
	})

	// Review routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("hr", "admin"))

		r.Get("/api/v1/exam/session/{candidateID}", sessionH.GetByCandidate)
		r.Get("/api/v1/exam/admission/{token}/audit", admissionH.AuditTrail)
	})

	return r
}
