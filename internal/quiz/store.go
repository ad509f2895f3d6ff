package quiz

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQuizNotFound  = errors.New("quiz not found")
	ErrDuplicateUser = errors.New("username or email already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Catalog is the read-only accessor for quiz definitions. AnswerKey is the
// only path that exposes correctness data, and only for grading.
type Catalog interface {
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
	QuizQuestions(ctx context.Context, quizID int64) ([]Question, error)
	AnswerKey(ctx context.Context, quizID int64, questionIDs []int64) (*AnswerKey, error)
}

type AttemptStore interface {
	// RecordAttempt persists one immutable attempt plus its responses.
	// The two inserts are intentionally not one transaction; when the
	// response insert fails the attempt row stays behind and the returned
	// attempt id is non-zero alongside the error.
	RecordAttempt(ctx context.Context, userID, quizID int64, graded []GradedAnswer, score, total int) (int64, error)
	ListAttempts(ctx context.Context, userID int64) ([]AttemptSummary, error)
}

type ProgressStore interface {
	MarkTheoryViewed(ctx context.Context, userID, quizID int64) (Progress, error)
	MarkQuizCompleted(ctx context.Context, userID, quizID int64) error
	GetProgress(ctx context.Context, userID int64) ([]Progress, error)
	// ResetProgress deletes every progress row and every attempt (with
	// cascaded responses) for the user. Destructive and irreversible.
	ResetProgress(ctx context.Context, userID int64) error
}

// Store is the full relational store behind the API.
type Store interface {
	UserStore
	Catalog
	AttemptStore
	ProgressStore
}
