package middleware

import (
	"net/http"

	"github.com/cycure/cycure-server/internal/auth"
)

// RequireSession rejects requests without a live session and puts the
// authenticated user id into the request context. The error body uses the
// same envelope as the API handlers so clients see one shape everywhere.
func RequireSession(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(auth.CookieName)
			if err != nil || c.Value == "" {
				unauthenticated(w)
				return
			}
			userID, err := m.Resolve(r.Context(), c.Value)
			if err != nil {
				unauthenticated(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"Not logged in"}`))
}
