package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"quizmentor/internal/llm"
)

// Stored question order is 1-based and counts only the questions that
// survive filtering, so the sequence stays gapless when generated
// questions are rejected.
func TestQuestionParamsAssignsOneBasedOrder(t *testing.T) {
	quizID := uuid.New()
	generated := []llm.GeneratedQuestion{
		{Text: "Pick one", Type: "multiple-choice", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: json.RawMessage(`1`)},
		{Text: "Bad type", Type: "essay", CorrectAnswer: json.RawMessage(`"x"`)},
		{Text: "Too few options", Type: "multiple-choice", Options: []string{"a"}, CorrectAnswer: json.RawMessage(`0`)},
		{Text: "Name it", Type: "short-answer", CorrectAnswer: json.RawMessage(`"mitochondria"`)},
	}

	params := questionParams(quizID, generated)
	if len(params) != 2 {
		t.Fatalf("kept %d questions, want 2", len(params))
	}
	for i, p := range params {
		if want := int32(i + 1); p.QuestionOrder != want {
			t.Errorf("question %q order: got %d, want %d", p.QuestionText, p.QuestionOrder, want)
		}
		if p.QuizID != quizID {
			t.Errorf("question %q bound to quiz %s, want %s", p.QuestionText, p.QuizID, quizID)
		}
	}
	if params[0].QuestionText != "Pick one" || params[1].QuestionText != "Name it" {
		t.Errorf("kept wrong questions: %q, %q", params[0].QuestionText, params[1].QuestionText)
	}
}
