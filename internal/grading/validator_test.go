package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"quizmentor/internal/models"

	"github.com/google/uuid"
)

// fakeGenerator scripts the LLM backend for orchestrator tests.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func twoChoiceQuiz() ([]models.Question, []models.StudentAnswer) {
	q1 := choiceQuestion(models.QuestionMultipleChoice, "1", 1, "a", "b", "c", "d")
	q2 := choiceQuestion(models.QuestionMultipleChoice, "2", 2, "a", "b", "c", "d")
	answers := []models.StudentAnswer{
		{QuestionID: q1.ID, SelectedOption: intPtr(1)},
		{QuestionID: q2.ID, SelectedOption: intPtr(3)},
	}
	return []models.Question{q1, q2}, answers
}

// Two multiple-choice questions, one answered right and one wrong:
// half marks, one whole-question equivalent of credit.
func TestGradeDeterministicAggregate(t *testing.T) {
	questions, answers := twoChoiceQuiz()

	v := NewValidator(nil)
	result := v.Grade(context.Background(), Request{Questions: questions, Answers: answers, UseLLM: true})

	if result.ValidationMethod != models.ValidationMethodTraditional {
		t.Errorf("method: got %q, want traditional", result.ValidationMethod)
	}
	if result.OverallScore != 50 {
		t.Errorf("overall score: got %v, want 50", result.OverallScore)
	}
	if result.CorrectAnswers != 1 {
		t.Errorf("correct answers: got %v, want 1", result.CorrectAnswers)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("total questions: got %v, want 2", result.TotalQuestions)
	}
}

func TestGradeUsesLLMWhenMaterialPresent(t *testing.T) {
	questions, answers := twoChoiceQuiz()

	llmResponse := fmt.Sprintf(`{
		"validation_results": [
			{"question_id": %q, "question_type": "multiple-choice", "is_correct": true, "score_percentage": 100, "feedback": "Right."},
			{"question_id": %q, "question_type": "multiple-choice", "is_correct": false, "score_percentage": 0, "feedback": "Wrong."}
		],
		"overall_score": 10,
		"total_questions": 99,
		"correct_answers": 9,
		"grading_summary": "Half right.",
		"validation_confidence": "high"
	}`, questions[0].ID, questions[1].ID)

	gen := &fakeGenerator{response: llmResponse}
	v := NewValidator(gen)
	result := v.Grade(context.Background(), Request{Questions: questions, Answers: answers, Material: "chapter text", UseLLM: true})

	if result.ValidationMethod != models.ValidationMethodLLM {
		t.Fatalf("method: got %q, want llm", result.ValidationMethod)
	}
	// Aggregates come from our rule, not the backend's self-reported
	// numbers.
	if result.OverallScore != 50 {
		t.Errorf("overall score recomputed: got %v, want 50", result.OverallScore)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("total questions recomputed: got %v, want 2", result.TotalQuestions)
	}
	if result.CorrectAnswers != 1 {
		t.Errorf("correct answers recomputed: got %v, want 1", result.CorrectAnswers)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("expected exactly one backend call, got %d", len(gen.prompts))
	}
}

func TestGradeFallsBackOnLLMError(t *testing.T) {
	questions, answers := twoChoiceQuiz()

	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "call failure", gen: &fakeGenerator{err: errors.New("backend unavailable")}},
		{name: "no json in response", gen: &fakeGenerator{response: "cannot grade"}},
		{name: "malformed json", gen: &fakeGenerator{response: `{"validation_results": [}`}},
		{name: "missing required fields", gen: &fakeGenerator{response: `{"validation_results": []}`}},
		{name: "backend-reported error", gen: &fakeGenerator{response: `{"error": "GRADING_FAILED", "error_message": "material unusable",
			"validation_results": [], "overall_score": 0, "total_questions": 0, "correct_answers": 0}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.gen)
			result := v.Grade(context.Background(), Request{Questions: questions, Answers: answers, Material: "chapter text", UseLLM: true})
			if result.ValidationMethod != models.ValidationMethodTraditional {
				t.Errorf("method: got %q, want traditional fallback", result.ValidationMethod)
			}
			if result.OverallScore != 50 {
				t.Errorf("fallback aggregate: got %v, want 50", result.OverallScore)
			}
		})
	}
}

func TestGradeSkipsLLMWithoutMaterialOrFlag(t *testing.T) {
	questions, answers := twoChoiceQuiz()
	gen := &fakeGenerator{response: "should never be called"}
	v := NewValidator(gen)

	tests := []struct {
		name string
		req  Request
	}{
		{name: "no material", req: Request{Questions: questions, Answers: answers, Material: "  ", UseLLM: true}},
		{name: "llm not requested", req: Request{Questions: questions, Answers: answers, Material: "chapter text", UseLLM: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Grade(context.Background(), tt.req)
			if result.ValidationMethod != models.ValidationMethodTraditional {
				t.Errorf("method: got %q, want traditional", result.ValidationMethod)
			}
		})
	}
	if len(gen.prompts) != 0 {
		t.Errorf("backend must not be called: got %d calls", len(gen.prompts))
	}
}

func TestGradeWithLLMSurfacesFailures(t *testing.T) {
	questions, answers := twoChoiceQuiz()

	v := NewValidator(&fakeGenerator{err: errors.New("timeout")})
	_, err := v.GradeWithLLM(context.Background(), Request{Questions: questions, Answers: answers, Material: "text"})
	if err == nil {
		t.Fatal("expected call failure to surface, got nil")
	}

	v = NewValidator(&fakeGenerator{response: "no json here"})
	_, err = v.GradeWithLLM(context.Background(), Request{Questions: questions, Answers: answers, Material: "text"})
	if !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("expected ErrNoJSONFound, got %v", err)
	}

	// A reply that self-reports failure is a failed grading pass even
	// when every required top-level field is present.
	v = NewValidator(&fakeGenerator{response: `{"error": "GRADING_FAILED", "error_message": "material unusable",
		"validation_results": [], "overall_score": 0, "total_questions": 0, "correct_answers": 0}`})
	_, err = v.GradeWithLLM(context.Background(), Request{Questions: questions, Answers: answers, Material: "text"})
	if err == nil {
		t.Fatal("expected backend-reported error to surface, got nil")
	}
	if !strings.Contains(err.Error(), "GRADING_FAILED") {
		t.Errorf("error should carry the backend's code, got %v", err)
	}
}

func TestGradeExcludesUnansweredFromMean(t *testing.T) {
	q1 := choiceQuestion(models.QuestionMultipleChoice, "0", 1, "a", "b")
	q2 := choiceQuestion(models.QuestionMultipleChoice, "0", 2, "a", "b")
	q3 := choiceQuestion(models.QuestionMultipleChoice, "0", 3, "a", "b")

	// Only q1 answered (correctly). Unanswered questions stay out of
	// the mean instead of counting as zero.
	answers := []models.StudentAnswer{{QuestionID: q1.ID, SelectedOption: intPtr(0)}}

	v := NewValidator(nil)
	result := v.Grade(context.Background(), Request{Questions: []models.Question{q1, q2, q3}, Answers: answers})
	if result.OverallScore != 100 {
		t.Errorf("overall score: got %v, want 100 (skipped questions excluded)", result.OverallScore)
	}
	if result.TotalQuestions != 1 {
		t.Errorf("total questions: got %v, want 1", result.TotalQuestions)
	}
}

func TestGradeRoundsMeanHalfUp(t *testing.T) {
	// One answer at 75 and one at 0 average to 37.5, which must round
	// half up to 38.
	qa := models.Question{ID: uuid.New(), Type: models.QuestionShortAnswer, CorrectAnswer: "x", Order: 1}
	qb := choiceQuestion(models.QuestionMultipleChoice, "0", 2, "a", "b")
	answers := []models.StudentAnswer{
		{QuestionID: qa.ID, AnswerText: "an answer"},   // 75
		{QuestionID: qb.ID, SelectedOption: intPtr(1)}, // 0
	}

	v := NewValidator(nil)
	result := v.Grade(context.Background(), Request{Questions: []models.Question{qa, qb}, Answers: answers})
	if result.OverallScore != 38 {
		t.Errorf("37.5 should round half up to 38, got %v", result.OverallScore)
	}
	if result.CorrectAnswers != 0.75 {
		t.Errorf("correct answers: got %v, want 0.75", result.CorrectAnswers)
	}
}

func TestGradeEmptySubmission(t *testing.T) {
	questions, _ := twoChoiceQuiz()
	v := NewValidator(nil)
	result := v.Grade(context.Background(), Request{Questions: questions})
	if result.OverallScore != 0 || result.TotalQuestions != 0 || result.CorrectAnswers != 0 {
		t.Errorf("empty submission should aggregate to zeros: %+v", result)
	}
}

func TestBuildAndParseRoundTrip(t *testing.T) {
	questions, answers := twoChoiceQuiz()
	prompt := BuildGradingPrompt("the reference text", questions, answers)

	for _, q := range questions {
		if !strings.Contains(prompt, q.ID.String()) {
			t.Errorf("prompt missing question id %s", q.ID)
		}
	}

	// A response shaped exactly as the prompt requests parses into a
	// result with one entry per matched answer.
	response := fmt.Sprintf(`{
		"validation_results": [
			{"question_id": %q, "question_type": "multiple-choice", "is_correct": true, "score_percentage": 100, "feedback": "ok"},
			{"question_id": %q, "question_type": "multiple-choice", "is_correct": false, "score_percentage": 0, "feedback": "no"}
		],
		"overall_score": 50, "total_questions": 2, "correct_answers": 1,
		"grading_summary": "s", "validation_confidence": "high"
	}`, questions[0].ID, questions[1].ID)

	result, err := ParseGradingResponse(response)
	if err != nil {
		t.Fatalf("round-trip parse failed: %v", err)
	}
	if len(result.Results) != len(answers) {
		t.Errorf("result count %d != matched answer count %d", len(result.Results), len(answers))
	}
}

func TestBuildGradingPromptTruncatesMaterialOnly(t *testing.T) {
	questions, answers := twoChoiceQuiz()
	material := strings.Repeat("m", MaxMaterialChars+500)

	prompt := BuildGradingPrompt(material, questions, answers)
	if !strings.Contains(prompt, "[...material truncated...]") {
		t.Errorf("oversized material should be truncated")
	}
	// Truncation happens at the material's tail; the question batch
	// after it stays intact.
	for _, q := range questions {
		if !strings.Contains(prompt, q.ID.String()) {
			t.Errorf("question %s lost to truncation", q.ID)
		}
	}
}
