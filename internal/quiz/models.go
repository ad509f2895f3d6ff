package quiz

// User identity. PasswordHash never leaves the auth boundary; it is
// excluded from JSON.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// Quiz is immutable reference data.
type Quiz struct {
	ID             int64  `json:"id"`
	ModuleType     string `json:"module_type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TotalQuestions int    `json:"total_questions"`
}

// Answer as served to clients: the correctness flag stays server-side,
// only the grading path may read it.
type Answer struct {
	ID          int64  `json:"id"`
	AnswerText  string `json:"answer_text"`
	AnswerOrder int    `json:"answer_order"`
}

type Question struct {
	ID           int64    `json:"id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Answers      []Answer `json:"answers"`
}

// AttemptSummary is one row of a user's attempt history, joined with the
// quiz it belongs to.
type AttemptSummary struct {
	AttemptID      int64  `json:"attempt_id"`
	UserID         int64  `json:"user_id"`
	QuizID         int64  `json:"quiz_id"`
	QuizTitle      string `json:"quiz_title"`
	ModuleType     string `json:"module_type"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CompletedAt    int64  `json:"completed_at"`
}

// Progress is the per-user/per-quiz completion state: two independent
// flags, upserted under a UNIQUE(user_id, quiz_id) constraint.
type Progress struct {
	QuizID          int64 `json:"quiz_id"`
	TheoryCompleted bool  `json:"theory_completed"`
	QuizCompleted   bool  `json:"quiz_completed"`
}
