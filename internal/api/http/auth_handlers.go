package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cycure/cycure-server/internal/auth"
	authmw "github.com/cycure/cycure-server/internal/auth/middleware"
	"github.com/cycure/cycure-server/internal/metrics"
	"github.com/cycure/cycure-server/internal/quiz"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func userPayload(u quiz.User) envelope {
	return envelope{"id": u.ID, "username": u.Username, "email": u.Email}
}

// POST /register. A successful registration also establishes a session.
func RegisterHandler(store quiz.UserStore, sessions *auth.Manager, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "Username, email, and password are required")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondErr(w, http.StatusBadRequest, "Username, email, and password are required")
			return
		}

		hash, err := auth.HashPassword(req.Password, bcryptCost)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
		u, err := store.CreateUser(r.Context(), req.Username, req.Email, hash)
		if err != nil {
			if errors.Is(err, quiz.ErrDuplicateUser) {
				respondErr(w, http.StatusBadRequest, "Username or email already exists")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		token, err := sessions.Issue(r.Context(), u.ID)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		setSessionCookie(w, token, sessions.TTL())
		metrics.RegistrationsTotal.Inc()
		respond(w, http.StatusOK, envelope{
			"success": true,
			"message": "User registered successfully",
			"user":    userPayload(u),
		})
	}
}

// POST /login. "No such user" and "wrong password" are indistinguishable
// to the caller.
func LoginHandler(store quiz.UserStore, sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondErr(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		u, err := store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, quiz.ErrUserNotFound) {
				respondErr(w, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !auth.CheckPassword(req.Password, u.PasswordHash) {
			respondErr(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := sessions.Issue(r.Context(), u.ID)
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		setSessionCookie(w, token, sessions.TTL())
		metrics.LoginsTotal.Inc()
		respond(w, http.StatusOK, envelope{
			"success": true,
			"message": "Login successful",
			"user":    userPayload(u),
		})
	}
}

// POST /logout destroys the server-side session and expires the cookie.
func LogoutHandler(sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
			if err := sessions.Revoke(r.Context(), c.Value); err != nil {
				log.Printf("logout: revoke session: %v", err)
				respondErr(w, http.StatusInternalServerError, "Failed to logout")
				return
			}
		}
		clearSessionCookie(w)
		respond(w, http.StatusOK, envelope{"success": true, "message": "Logout successful"})
	}
}

// GET /me
func MeHandler(store quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())
		u, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, quiz.ErrUserNotFound) {
				respondErr(w, http.StatusNotFound, "User not found")
				return
			}
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "user": userPayload(u)})
	}
}

// GET /users
func ListUsersHandler(store quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			respondErr(w, http.StatusInternalServerError, "Database error")
			return
		}
		respond(w, http.StatusOK, envelope{"success": true, "users": users})
	}
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
