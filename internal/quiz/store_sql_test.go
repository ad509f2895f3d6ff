package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	internaldb "github.com/cycure/cycure-server/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	dbh, err := internaldb.Open(ctx, internaldb.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

// seedQuiz creates one quiz with three questions. q2 has two correct
// answers. Returns the quiz id, question ids and the correct answer id per
// question index.
func seedQuiz(t *testing.T, dbh *sql.DB) (quizID int64, questionIDs, correctIDs []int64) {
	t.Helper()
	ctx := context.Background()
	err := dbh.QueryRowContext(ctx,
		`INSERT INTO quizzes (module_type, title, description, total_questions)
		 VALUES ('phishing','Phishing Basics','Spotting phishing attempts',3) RETURNING id`).Scan(&quizID)
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	for i := 0; i < 3; i++ {
		var qid int64
		err := dbh.QueryRowContext(ctx,
			`INSERT INTO questions (quiz_id, question_text, question_type)
			 VALUES ($1,$2,'multiple_choice') RETURNING id`,
			quizID, fmt.Sprintf("Question %d", i+1)).Scan(&qid)
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
		questionIDs = append(questionIDs, qid)

		var correctID int64
		for j := 0; j < 3; j++ {
			correct := j == 0 || (i == 1 && j == 1) // q2 has two correct answers
			var aid int64
			err := dbh.QueryRowContext(ctx,
				`INSERT INTO answers (question_id, answer_text, is_correct, answer_order)
				 VALUES ($1,$2,$3,$4) RETURNING id`,
				qid, fmt.Sprintf("Answer %d", j+1), correct, j).Scan(&aid)
			if err != nil {
				t.Fatalf("seed answer: %v", err)
			}
			if j == 0 {
				correctID = aid
			}
		}
		correctIDs = append(correctIDs, correctID)
	}
	return quizID, questionIDs, correctIDs
}

func seedUser(t *testing.T, s *SQLStore, name string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, name+"@example.com", "x")
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := NewSQLStore(openTestDB(t))
	ctx := context.Background()
	if _, err := s.CreateUser(ctx, "alice", "alice@example.com", "h"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "other@example.com", "h"); err != ErrDuplicateUser {
		t.Fatalf("duplicate username: got %v, want ErrDuplicateUser", err)
	}
	if _, err := s.CreateUser(ctx, "other", "alice@example.com", "h"); err != ErrDuplicateUser {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateUser", err)
	}
}

func TestAnswerKeyRestrictedToQuiz(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, qids, correct := seedQuiz(t, dbh)
	otherQuiz, otherQids, _ := seedQuiz(t, dbh)

	key, err := s.AnswerKey(ctx, quizID, append(qids, otherQids...))
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	res := Grade(key, []SubmittedAnswer{
		{QuestionID: qids[0], SelectedAnswerID: correct[0]},
		{QuestionID: otherQids[0], SelectedAnswerID: correct[0]},
	})
	if res.Score != 1 || res.TotalQuestions != 1 {
		t.Fatalf("got %d/%d, want 1/1: question from quiz %d must be filtered", res.Score, res.TotalQuestions, otherQuiz)
	}
}

func TestRecordAttemptPersistsResponses(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, qids, correct := seedQuiz(t, dbh)
	u := seedUser(t, s, "bob")

	graded := []GradedAnswer{
		{QuestionID: qids[0], SelectedAnswerID: correct[0], Correct: true},
		{QuestionID: qids[1], SelectedAnswerID: correct[1] + 2, Correct: false},
	}
	attemptID, err := s.RecordAttempt(ctx, u.ID, quizID, graded, 1, 2)
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if attemptID == 0 {
		t.Fatal("attempt id is zero")
	}

	var n int
	if err := dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_responses WHERE attempt_id=$1`, attemptID).Scan(&n); err != nil {
		t.Fatalf("count responses: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d responses, want 2", n)
	}

	attempts, err := s.ListAttempts(ctx, u.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(attempts))
	}
	a := attempts[0]
	if a.AttemptID != attemptID || a.Score != 1 || a.TotalQuestions != 2 || a.QuizTitle != "Phishing Basics" {
		t.Fatalf("unexpected attempt summary: %+v", a)
	}
}

func TestRecordAttemptZeroGraded(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, _, _ := seedQuiz(t, dbh)
	u := seedUser(t, s, "carol")

	// Zero valid pairs still produce a recorded zero-score attempt.
	attemptID, err := s.RecordAttempt(ctx, u.ID, quizID, nil, 0, 0)
	if err != nil {
		t.Fatalf("record empty attempt: %v", err)
	}
	attempts, err := s.ListAttempts(ctx, u.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].AttemptID != attemptID || attempts[0].Score != 0 || attempts[0].TotalQuestions != 0 {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
}

func TestMarkTheoryViewedIdempotent(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, _, _ := seedQuiz(t, dbh)
	u := seedUser(t, s, "dave")

	p1, err := s.MarkTheoryViewed(ctx, u.ID, quizID)
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	p2, err := s.MarkTheoryViewed(ctx, u.ID, quizID)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("progress changed between identical calls: %+v vs %+v", p1, p2)
	}
	if !p2.TheoryCompleted || p2.QuizCompleted {
		t.Fatalf("want theory=true quiz=false, got %+v", p2)
	}

	var n int
	if err := dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_progress WHERE user_id=$1 AND quiz_id=$2`, u.ID, quizID).Scan(&n); err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d progress rows, want 1", n)
	}
}

func TestMarkQuizCompletedImpliesTheory(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, _, _ := seedQuiz(t, dbh)
	u := seedUser(t, s, "erin")

	if err := s.MarkQuizCompleted(ctx, u.ID, quizID); err != nil {
		t.Fatalf("mark quiz completed: %v", err)
	}
	progress, err := s.GetProgress(ctx, u.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d rows, want 1", len(progress))
	}
	if !progress[0].TheoryCompleted || !progress[0].QuizCompleted {
		t.Fatalf("want both flags true, got %+v", progress[0])
	}

	// Marking theory afterwards must not clear quiz_completed.
	p, err := s.MarkTheoryViewed(ctx, u.ID, quizID)
	if err != nil {
		t.Fatalf("mark theory: %v", err)
	}
	if !p.TheoryCompleted || !p.QuizCompleted {
		t.Fatalf("theory mark cleared a flag: %+v", p)
	}
}

func TestResetProgressRemovesEverything(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, qids, correct := seedQuiz(t, dbh)
	u := seedUser(t, s, "frank")
	other := seedUser(t, s, "grace")

	if _, err := s.RecordAttempt(ctx, u.ID, quizID,
		[]GradedAnswer{{QuestionID: qids[0], SelectedAnswerID: correct[0], Correct: true}}, 1, 1); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if err := s.MarkQuizCompleted(ctx, u.ID, quizID); err != nil {
		t.Fatalf("mark quiz: %v", err)
	}
	if err := s.MarkQuizCompleted(ctx, other.ID, quizID); err != nil {
		t.Fatalf("mark other: %v", err)
	}

	if err := s.ResetProgress(ctx, u.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, q := range []struct {
		name  string
		query string
	}{
		{"attempts", `SELECT COUNT(*) FROM user_attempts WHERE user_id=$1`},
		{"responses", `SELECT COUNT(*) FROM user_responses r JOIN user_attempts a ON a.id=r.attempt_id WHERE a.user_id=$1`},
		{"progress", `SELECT COUNT(*) FROM user_progress WHERE user_id=$1`},
	} {
		var n int
		if err := dbh.QueryRowContext(ctx, q.query, u.ID).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", q.name, err)
		}
		if n != 0 {
			t.Errorf("%s: %d rows left after reset, want 0", q.name, n)
		}
	}

	// Other users are untouched; resetting an already-empty user is a no-op.
	progress, err := s.GetProgress(ctx, other.ID)
	if err != nil || len(progress) != 1 {
		t.Fatalf("other user's progress affected: %v %+v", err, progress)
	}
	if err := s.ResetProgress(ctx, u.ID); err != nil {
		t.Fatalf("reset of empty user: %v", err)
	}
}

func TestQuizQuestionsHidesCorrectness(t *testing.T) {
	dbh := openTestDB(t)
	s := NewSQLStore(dbh)
	ctx := context.Background()
	quizID, qids, _ := seedQuiz(t, dbh)

	questions, err := s.QuizQuestions(ctx, quizID)
	if err != nil {
		t.Fatalf("quiz questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	for i, q := range questions {
		if q.ID != qids[i] {
			t.Fatalf("question order not stable by id: got %d at %d, want %d", q.ID, i, qids[i])
		}
		if len(q.Answers) != 3 {
			t.Fatalf("question %d has %d answers, want 3", q.ID, len(q.Answers))
		}
	}

	if _, err := s.QuizQuestions(ctx, 9999); err != ErrQuizNotFound {
		t.Fatalf("unknown quiz: got %v, want ErrQuizNotFound", err)
	}
}
