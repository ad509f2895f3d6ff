package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// SQLStore implements Store over database/sql. Placeholders use the $n
// form, which both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// --- users ---

func (s *SQLStore) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	var exist int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username=$1 OR email=$2`, username, email).Scan(&exist)
	switch {
	case err == nil:
		return User{}, ErrDuplicateUser
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, fmt.Errorf("check user: %w", err)
	}

	u := User{Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().Unix()}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		username, email, passwordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- catalog ---

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_type, title, description, total_questions FROM quizzes ORDER BY module_type, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		var q Quiz
		if err := rows.Scan(&q.ID, &q.ModuleType, &q.Title, &q.Description, &q.TotalQuestions); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, module_type, title, description, total_questions FROM quizzes WHERE id=$1`, id)
	var q Quiz
	if err := row.Scan(&q.ID, &q.ModuleType, &q.Title, &q.Description, &q.TotalQuestions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	return q, nil
}

// QuizQuestions returns the quiz's questions ordered by id with the
// correctness flag stripped. Answer order is shuffled per call so clients
// cannot memorize positions.
func (s *SQLStore) QuizQuestions(ctx context.Context, quizID int64) ([]Question, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.question_text, q.question_type, a.id, a.answer_text, a.answer_order
		FROM questions q
		LEFT JOIN answers a ON a.question_id = q.id
		WHERE q.quiz_id = $1
		ORDER BY q.id, a.answer_order`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	idx := map[int64]int{}
	for rows.Next() {
		var qid int64
		var qtext, qtype string
		var aid sql.NullInt64
		var atext sql.NullString
		var aorder sql.NullInt64
		if err := rows.Scan(&qid, &qtext, &qtype, &aid, &atext, &aorder); err != nil {
			return nil, err
		}
		i, ok := idx[qid]
		if !ok {
			i = len(out)
			idx[qid] = i
			out = append(out, Question{ID: qid, QuestionText: qtext, QuestionType: qtype, Answers: []Answer{}})
		}
		if aid.Valid {
			out[i].Answers = append(out[i].Answers, Answer{
				ID:          aid.Int64,
				AnswerText:  atext.String,
				AnswerOrder: int(aorder.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		ans := out[i].Answers
		rand.Shuffle(len(ans), func(a, b int) { ans[a], ans[b] = ans[b], ans[a] })
	}
	return out, nil
}

// AnswerKey loads the correct-answer key for the submitted question ids,
// restricted to questions that actually belong to the quiz. Questions
// outside the quiz simply do not appear in the key.
func (s *SQLStore) AnswerKey(ctx context.Context, quizID int64, questionIDs []int64) (*AnswerKey, error) {
	key := NewAnswerKey()
	if len(questionIDs) == 0 {
		return key, nil
	}

	ph := make([]string, len(questionIDs))
	args := make([]any, 0, len(questionIDs)+1)
	args = append(args, quizID)
	for i, id := range questionIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	q := fmt.Sprintf(`
		SELECT q.id, a.id, a.is_correct
		FROM questions q
		JOIN answers a ON a.question_id = q.id
		WHERE q.quiz_id = $1 AND q.id IN (%s)`, strings.Join(ph, ","))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var questionID, answerID int64
		var isCorrect bool
		if err := rows.Scan(&questionID, &answerID, &isCorrect); err != nil {
			return nil, err
		}
		key.Add(questionID, answerID, isCorrect)
	}
	return key, rows.Err()
}

// --- attempts ---

func (s *SQLStore) RecordAttempt(ctx context.Context, userID, quizID int64, graded []GradedAnswer, score, total int) (int64, error) {
	var attemptID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO user_attempts (user_id, quiz_id, score, total_questions, completed_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		userID, quizID, score, total, time.Now().Unix()).Scan(&attemptID)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	if len(graded) == 0 {
		return attemptID, nil
	}

	ph := make([]string, len(graded))
	args := make([]any, 0, len(graded)*4)
	for i, g := range graded {
		n := i * 4
		ph[i] = fmt.Sprintf("($%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4)
		args = append(args, attemptID, g.QuestionID, g.SelectedAnswerID, g.Correct)
	}
	q := `INSERT INTO user_responses (attempt_id, question_id, selected_answer_id, is_correct) VALUES ` +
		strings.Join(ph, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		// The attempt row is already committed; the caller sees the id so
		// it can report a response-persistence failure distinctly.
		return attemptID, fmt.Errorf("insert responses: %w", err)
	}
	return attemptID, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID int64) ([]AttemptSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ua.id, ua.user_id, ua.quiz_id, q.title, q.module_type,
		       ua.score, ua.total_questions, ua.completed_at
		FROM user_attempts ua
		JOIN quizzes q ON q.id = ua.quiz_id
		WHERE ua.user_id = $1
		ORDER BY ua.completed_at DESC, ua.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AttemptSummary{}
	for rows.Next() {
		var a AttemptSummary
		if err := rows.Scan(&a.AttemptID, &a.UserID, &a.QuizID, &a.QuizTitle, &a.ModuleType,
			&a.Score, &a.TotalQuestions, &a.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- progress ---

func (s *SQLStore) MarkTheoryViewed(ctx context.Context, userID, quizID int64) (Progress, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, quiz_id, theory_completed, quiz_completed)
		VALUES ($1,$2,TRUE,FALSE)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET theory_completed=TRUE`,
		userID, quizID)
	if err != nil {
		return Progress{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT quiz_id, theory_completed, quiz_completed FROM user_progress WHERE user_id=$1 AND quiz_id=$2`,
		userID, quizID)
	var p Progress
	if err := row.Scan(&p.QuizID, &p.TheoryCompleted, &p.QuizCompleted); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// MarkQuizCompleted sets both flags: a submission implies the theory was
// consumed.
func (s *SQLStore) MarkQuizCompleted(ctx context.Context, userID, quizID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, quiz_id, theory_completed, quiz_completed)
		VALUES ($1,$2,TRUE,TRUE)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET theory_completed=TRUE, quiz_completed=TRUE`,
		userID, quizID)
	return err
}

func (s *SQLStore) GetProgress(ctx context.Context, userID int64) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quiz_id, theory_completed, quiz_completed FROM user_progress WHERE user_id=$1 ORDER BY quiz_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Progress{}
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.QuizID, &p.TheoryCompleted, &p.QuizCompleted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) ResetProgress(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	// Responses cascade with their attempts.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_attempts WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	return nil
}
