package grading

import (
	"testing"

	"quizmentor/internal/models"

	"github.com/google/uuid"
)

func intPtr(i int) *int { return &i }

func choiceQuestion(qtype models.QuestionType, correct string, order int, options ...string) models.Question {
	return models.Question{
		ID:            uuid.New(),
		Text:          "q",
		Type:          qtype,
		Options:       options,
		CorrectAnswer: correct,
		Order:         order,
	}
}

func TestGradeDeterministicallyMultipleChoice(t *testing.T) {
	q1 := choiceQuestion(models.QuestionMultipleChoice, "1", 1, "red", "green", "blue")
	q2 := choiceQuestion(models.QuestionMultipleChoice, "2", 2, "one", "two", "three")

	answers := []models.StudentAnswer{
		{QuestionID: q1.ID, SelectedOption: intPtr(1)},
		{QuestionID: q2.ID, SelectedOption: intPtr(3)},
	}

	results := GradeDeterministically([]models.Question{q1, q2}, answers)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if !results[0].IsCorrect || results[0].ScorePercentage != 100 {
		t.Errorf("q1 should be fully correct: %+v", results[0])
	}
	if results[0].ExpectedAnswer != "green" {
		t.Errorf("q1 expected answer echo: got %q, want green", results[0].ExpectedAnswer)
	}
	if results[1].IsCorrect || results[1].ScorePercentage != 0 {
		t.Errorf("q2 should be fully incorrect: %+v", results[1])
	}
}

func TestGradeDeterministicallyTrueFalseFeedback(t *testing.T) {
	q := choiceQuestion(models.QuestionTrueFalse, "0", 1)
	answers := []models.StudentAnswer{{QuestionID: q.ID, SelectedOption: intPtr(1)}}

	results := GradeDeterministically([]models.Question{q}, answers)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ExpectedAnswer != "True" {
		t.Errorf("expected answer should read True, got %q", results[0].ExpectedAnswer)
	}
	if results[0].StudentAnswer != "False" {
		t.Errorf("student answer should read False, got %q", results[0].StudentAnswer)
	}
}

func TestGradeDeterministicallyShortAnswer(t *testing.T) {
	q := models.Question{ID: uuid.New(), Type: models.QuestionShortAnswer, CorrectAnswer: "diffusion", Order: 1}

	tests := []struct {
		name      string
		text      string
		wantScore float64
	}{
		{name: "substantive answer gets fixed partial credit", text: "particles moving down a gradient", wantScore: 75},
		{name: "whitespace only scores zero", text: "   ", wantScore: 0},
		{name: "empty scores zero", text: "", wantScore: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := GradeDeterministically([]models.Question{q}, []models.StudentAnswer{{QuestionID: q.ID, AnswerText: tt.text}})
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			r := results[0]
			if r.ScorePercentage != tt.wantScore {
				t.Errorf("score: got %v, want %v", r.ScorePercentage, tt.wantScore)
			}
			// Offline grading can never certify a free-text answer.
			if r.IsCorrect {
				t.Errorf("short-answer must never be is_correct under deterministic grading")
			}
		})
	}
}

func TestGradeDeterministicallyFillInBlank(t *testing.T) {
	q := models.Question{ID: uuid.New(), Type: models.QuestionFillInBlank, CorrectAnswer: `["xylem","phloem"]`, Order: 1}

	withEntry := GradeDeterministically([]models.Question{q}, []models.StudentAnswer{{QuestionID: q.ID, FillInAnswers: []string{"", "phloem"}}})
	if withEntry[0].ScorePercentage != 75 || withEntry[0].IsCorrect {
		t.Errorf("one non-empty blank should earn 75 and not be correct: %+v", withEntry[0])
	}

	empty := GradeDeterministically([]models.Question{q}, []models.StudentAnswer{{QuestionID: q.ID, FillInAnswers: []string{"", "  "}}})
	if empty[0].ScorePercentage != 0 {
		t.Errorf("all-empty blanks should score 0, got %v", empty[0].ScorePercentage)
	}
}

func TestGradeDeterministicallyScoreSetIsBounded(t *testing.T) {
	// Free-text types only ever produce 0 or the fixed partial credit.
	q := models.Question{ID: uuid.New(), Type: models.QuestionShortAnswer, CorrectAnswer: "x", Order: 1}
	for _, text := range []string{"", "a", "longer answer text", " \t "} {
		results := GradeDeterministically([]models.Question{q}, []models.StudentAnswer{{QuestionID: q.ID, AnswerText: text}})
		s := results[0].ScorePercentage
		if s != 0 && s != 75 {
			t.Errorf("deterministic free-text score %v outside {0, 75}", s)
		}
	}
}

func TestGradeDeterministicallyDropsUnmatchedAndUnanswered(t *testing.T) {
	q1 := choiceQuestion(models.QuestionMultipleChoice, "0", 1, "a", "b")
	q2 := choiceQuestion(models.QuestionMultipleChoice, "1", 2, "a", "b")

	answers := []models.StudentAnswer{
		{QuestionID: q1.ID, SelectedOption: intPtr(0)},
		{QuestionID: uuid.New(), SelectedOption: intPtr(1)}, // unknown question id
		// q2 left unanswered
	}

	results := GradeDeterministically([]models.Question{q1, q2}, answers)
	if len(results) != 1 {
		t.Fatalf("expected only the matched answer graded, got %d results", len(results))
	}
	if results[0].QuestionID != q1.ID.String() {
		t.Errorf("graded the wrong question: %s", results[0].QuestionID)
	}
}

func TestGradeDeterministicallyFollowsQuestionOrder(t *testing.T) {
	q1 := choiceQuestion(models.QuestionMultipleChoice, "0", 2, "a", "b")
	q2 := choiceQuestion(models.QuestionMultipleChoice, "0", 1, "a", "b")

	answers := []models.StudentAnswer{
		{QuestionID: q1.ID, SelectedOption: intPtr(0)},
		{QuestionID: q2.ID, SelectedOption: intPtr(0)},
	}

	// Pass questions out of display order; results must follow Order.
	results := GradeDeterministically([]models.Question{q1, q2}, answers)
	if results[0].QuestionID != q2.ID.String() || results[1].QuestionID != q1.ID.String() {
		t.Errorf("results not in question order: %s then %s", results[0].QuestionID, results[1].QuestionID)
	}
}
