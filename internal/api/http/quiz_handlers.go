package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	authmw "github.com/cycure/cycure-server/internal/auth/middleware"
	"github.com/cycure/cycure-server/internal/metrics"
	"github.com/cycure/cycure-server/internal/quiz"

	"github.com/go-chi/chi/v5"
)

func quizIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
}

// GET /quizzes
func ListQuizzesHandler(catalog quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := catalog.ListQuizzes(r.Context())
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "quizzes": quizzes})
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(catalog quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quizIDParam(r)
		if err != nil {
			respondErr(w, http.StatusNotFound, "Quiz not found")
			return
		}
		q, err := catalog.GetQuiz(r.Context(), id)
		if err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				respondErr(w, http.StatusNotFound, "Quiz not found")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "quiz": q})
	}
}

// GET /quizzes/{quizID}/questions. Question order is stable by id; answer
// order is randomized per request and correctness is never exposed.
func QuizQuestionsHandler(catalog quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quizIDParam(r)
		if err != nil {
			respondErr(w, http.StatusNotFound, "Quiz not found")
			return
		}
		questions, err := catalog.QuizQuestions(r.Context(), id)
		if err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				respondErr(w, http.StatusNotFound, "Quiz not found")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "questions": questions})
	}
}

type submitRequest struct {
	Answers []quiz.SubmittedAnswer `json:"answers"`
}

// POST /quizzes/{quizID}/submit runs the grading pipeline: grade against
// the catalog's key, record the attempt and responses, then update
// progress. The progress step is best-effort: once the attempt is saved
// the score is authoritative, so a progress failure is logged and the
// success response still goes out.
func SubmitQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())
		quizID, err := quizIDParam(r)
		if err != nil {
			respondErr(w, http.StatusNotFound, "Quiz not found")
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "Answers are required")
			return
		}
		if len(req.Answers) == 0 {
			respondErr(w, http.StatusBadRequest, "Answers are required")
			return
		}

		if _, err := store.GetQuiz(r.Context(), quizID); err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				respondErr(w, http.StatusNotFound, "Quiz not found")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}

		questionIDs := make([]int64, len(req.Answers))
		for i, a := range req.Answers {
			questionIDs[i] = a.QuestionID
		}
		key, err := store.AnswerKey(r.Context(), quizID, questionIDs)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}

		res := quiz.Grade(key, req.Answers)

		attemptID, err := store.RecordAttempt(r.Context(), userID, quizID, res.Graded, res.Score, res.TotalQuestions)
		if err != nil {
			if attemptID != 0 {
				respondErr(w, http.StatusInternalServerError, "Failed to save responses")
			} else {
				respondErr(w, http.StatusInternalServerError, "Failed to save attempt")
			}
			return
		}

		if err := store.MarkQuizCompleted(r.Context(), userID, quizID); err != nil {
			log.Printf("submit: progress update failed (user=%d quiz=%d attempt=%d): %v",
				userID, quizID, attemptID, err)
		}

		metrics.ObserveGrading(res.Score, res.TotalQuestions)
		respond(w, http.StatusOK, envelope{
			"success": true,
			"results": envelope{
				"attemptId":      attemptID,
				"score":          res.Score,
				"totalQuestions": res.TotalQuestions,
				"correctCount":   res.Score,
			},
		})
	}
}
