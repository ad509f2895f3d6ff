package quiz

// SubmittedAnswer is one (question, selected answer) pair from a client
// submission. Field names follow the wire format.
type SubmittedAnswer struct {
	QuestionID       int64 `json:"questionId"`
	SelectedAnswerID int64 `json:"selectedAnswerId"`
}

// GradedAnswer is one graded pair, persisted as a response row.
type GradedAnswer struct {
	QuestionID       int64
	SelectedAnswerID int64
	Correct          bool
}

// AnswerKey is the correct-answer key for a single quiz: the set of
// question ids that belong to it and, per question, the ids of answers
// marked correct. A question may have several correct answers.
type AnswerKey struct {
	valid   map[int64]bool
	correct map[int64]map[int64]bool
}

func NewAnswerKey() *AnswerKey {
	return &AnswerKey{
		valid:   map[int64]bool{},
		correct: map[int64]map[int64]bool{},
	}
}

// Add records one (question, answer) row of the key.
func (k *AnswerKey) Add(questionID, answerID int64, isCorrect bool) {
	k.valid[questionID] = true
	if isCorrect {
		set, ok := k.correct[questionID]
		if !ok {
			set = map[int64]bool{}
			k.correct[questionID] = set
		}
		set[answerID] = true
	}
}

type GradeResult struct {
	Score          int
	TotalQuestions int
	Graded         []GradedAnswer
}

// Grade scores a submission against the key. Pairs whose question does not
// belong to the quiz are dropped without error and count toward neither
// score nor total. A pair is correct when its selected answer is any of
// the question's correct answers; there is no partial credit. When every
// pair is filtered out the result is a zero-score grading run, not an
// error.
func Grade(key *AnswerKey, answers []SubmittedAnswer) GradeResult {
	res := GradeResult{Graded: []GradedAnswer{}}
	for _, a := range answers {
		if !key.valid[a.QuestionID] {
			continue
		}
		correct := key.correct[a.QuestionID][a.SelectedAnswerID]
		if correct {
			res.Score++
		}
		res.Graded = append(res.Graded, GradedAnswer{
			QuestionID:       a.QuestionID,
			SelectedAnswerID: a.SelectedAnswerID,
			Correct:          correct,
		})
	}
	res.TotalQuestions = len(res.Graded)
	return res
}
