package http

import (
	"net/http"
	"strconv"

	authmw "github.com/cycure/cycure-server/internal/auth/middleware"

	"github.com/go-chi/chi/v5"
)

// requireOwner enforces "identity == resource owner" on /users/{userID}
// routes. It returns the owner id and true, or writes the error response
// and returns false: 401 without a session, 400 on a malformed id, 403 on
// a cross-user id whether or not that user exists.
func requireOwner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sub := authmw.UserIDFromContext(r.Context())
	if sub == 0 {
		respondErr(w, http.StatusUnauthorized, "Not logged in")
		return 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	if id != sub {
		respondErr(w, http.StatusForbidden, "Forbidden")
		return 0, false
	}
	return id, true
}
