package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cycure/cycure-server/internal/quiz"
)

// GET /users/{userID}/attempts (self-only)
func ListUserAttemptsHandler(store quiz.AttemptStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireOwner(w, r)
		if !ok {
			return
		}
		attempts, err := store.ListAttempts(r.Context(), userID)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "attempts": attempts})
	}
}

// GET /users/{userID}/progress (self-only)
func GetProgressHandler(store quiz.ProgressStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireOwner(w, r)
		if !ok {
			return
		}
		progress, err := store.GetProgress(r.Context(), userID)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "progress": progress})
	}
}

type theoryViewedRequest struct {
	QuizID int64 `json:"quizId"`
}

// POST /users/{userID}/progress (self-only) acknowledges a theory view.
// Idempotent: repeating it leaves the progress row unchanged, and it never
// clears a quiz_completed flag.
func MarkTheoryViewedHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireOwner(w, r)
		if !ok {
			return
		}
		var req theoryViewedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == 0 {
			respondErr(w, http.StatusBadRequest, "Quiz id is required")
			return
		}
		if _, err := store.GetQuiz(r.Context(), req.QuizID); err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				respondErr(w, http.StatusNotFound, "Quiz not found")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		p, err := store.MarkTheoryViewed(r.Context(), userID, req.QuizID)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Failed to update progress")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "progress": p})
	}
}

// DELETE /users/{userID}/progress (self-only) wipes progress, attempts and
// responses for the user. No soft delete; a no-op on an empty user.
func ResetProgressHandler(store quiz.ProgressStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireOwner(w, r)
		if !ok {
			return
		}
		if err := store.ResetProgress(r.Context(), userID); err != nil {
			respondErr(w, http.StatusInternalServerError, "Failed to reset progress")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "message": "Progress reset"})
	}
}
