package http

import (
	"net/http"
	"time"

	"github.com/cycure/cycure-server/internal/auth"
	authmw "github.com/cycure/cycure-server/internal/auth/middleware"
	"github.com/cycure/cycure-server/internal/metrics"
	"github.com/cycure/cycure-server/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the full API. Register, login and catalog reads are
// public; everything user-scoped sits behind the session middleware.
func NewRouter(store quiz.Store, sessions *auth.Manager, bcryptCost int, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(ar chi.Router) {
		// Public surface
		ar.Post("/register", RegisterHandler(store, sessions, bcryptCost))
		ar.Post("/login", LoginHandler(store, sessions))
		ar.Get("/users", ListUsersHandler(store))
		ar.Get("/quizzes", ListQuizzesHandler(store))
		ar.Get("/quizzes/{quizID}", GetQuizHandler(store))
		ar.Get("/quizzes/{quizID}/questions", QuizQuestionsHandler(store))

		// Session-gated surface
		ar.Group(func(pr chi.Router) {
			pr.Use(authmw.RequireSession(sessions))
			pr.Post("/logout", LogoutHandler(sessions))
			pr.Get("/me", MeHandler(store))
			pr.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(store))
			pr.Get("/users/{userID}/attempts", ListUserAttemptsHandler(store))
			pr.Get("/users/{userID}/progress", GetProgressHandler(store))
			pr.Post("/users/{userID}/progress", MarkTheoryViewedHandler(store))
			pr.Delete("/users/{userID}/progress", ResetProgressHandler(store))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
