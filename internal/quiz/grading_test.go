package quiz

import "testing"

// key for a quiz with three questions: q1 single-correct, q2 multi-correct,
// q3 single-correct.
func testKey() *AnswerKey {
	k := NewAnswerKey()
	k.Add(1, 11, true)
	k.Add(1, 12, false)
	k.Add(2, 21, true)
	k.Add(2, 22, true)
	k.Add(2, 23, false)
	k.Add(3, 31, false)
	k.Add(3, 32, true)
	return k
}

func TestGradeScoresAgainstKey(t *testing.T) {
	res := Grade(testKey(), []SubmittedAnswer{
		{QuestionID: 1, SelectedAnswerID: 11}, // correct
		{QuestionID: 2, SelectedAnswerID: 23}, // wrong
		{QuestionID: 3, SelectedAnswerID: 32}, // correct
	})
	if res.Score != 2 || res.TotalQuestions != 3 {
		t.Fatalf("got score=%d total=%d, want 2/3", res.Score, res.TotalQuestions)
	}
	if len(res.Graded) != 3 {
		t.Fatalf("graded list has %d entries, want 3", len(res.Graded))
	}
	want := []bool{true, false, true}
	correct := 0
	for i, g := range res.Graded {
		if g.Correct != want[i] {
			t.Errorf("graded[%d].Correct = %v, want %v", i, g.Correct, want[i])
		}
		if g.Correct {
			correct++
		}
	}
	if correct != res.Score {
		t.Fatalf("score %d does not equal correct count %d", res.Score, correct)
	}
	if res.Score > res.TotalQuestions {
		t.Fatalf("score %d exceeds total %d", res.Score, res.TotalQuestions)
	}
}

func TestGradeMultiCorrectAcceptsAnyCorrectAnswer(t *testing.T) {
	for _, sel := range []int64{21, 22} {
		res := Grade(testKey(), []SubmittedAnswer{{QuestionID: 2, SelectedAnswerID: sel}})
		if res.Score != 1 {
			t.Errorf("answer %d to multi-correct question scored %d, want 1", sel, res.Score)
		}
	}
}

func TestGradeDropsForeignQuestions(t *testing.T) {
	res := Grade(testKey(), []SubmittedAnswer{
		{QuestionID: 1, SelectedAnswerID: 11},
		{QuestionID: 99, SelectedAnswerID: 11}, // not in this quiz
	})
	if res.Score != 1 || res.TotalQuestions != 1 {
		t.Fatalf("got score=%d total=%d, want 1/1: foreign questions must not count", res.Score, res.TotalQuestions)
	}
}

func TestGradeAllForeignYieldsZeroScoreResult(t *testing.T) {
	res := Grade(testKey(), []SubmittedAnswer{
		{QuestionID: 98, SelectedAnswerID: 1},
		{QuestionID: 99, SelectedAnswerID: 2},
	})
	if res.Score != 0 || res.TotalQuestions != 0 {
		t.Fatalf("got score=%d total=%d, want 0/0", res.Score, res.TotalQuestions)
	}
	if len(res.Graded) != 0 {
		t.Fatalf("graded list should be empty, got %d entries", len(res.Graded))
	}
}

func TestGradeSelectedWrongAnswerIDNeverCorrect(t *testing.T) {
	// An answer id that exists under another question must not count.
	res := Grade(testKey(), []SubmittedAnswer{{QuestionID: 1, SelectedAnswerID: 21}})
	if res.Score != 0 || res.TotalQuestions != 1 {
		t.Fatalf("got score=%d total=%d, want 0/1", res.Score, res.TotalQuestions)
	}
}
