package grading

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"quizmentor/internal/models"
)

// Generator is the single synchronous call into the AI text backend.
// It may fail, time out, or return malformed text; callers treat all
// three the same way.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Validator decides the grading strategy for a submission and computes
// the aggregate score. LLM grading is attempted only when requested
// and reference material exists; every failure along that path falls
// back to the deterministic grader, so a submission never fails
// because the backend is unavailable.
type Validator struct {
	llm Generator
}

// NewValidator creates a Validator. llm may be nil, in which case
// every submission grades deterministically.
func NewValidator(llm Generator) *Validator {
	return &Validator{llm: llm}
}

// Request carries one grading run's inputs: the quiz's questions, the
// raw submitted answers, the project's extracted reference material,
// and whether LLM validation was requested.
type Request struct {
	Questions []models.Question
	Answers   []models.StudentAnswer
	Material  string
	UseLLM    bool
}

// Grade runs the submission-path state machine and always produces a
// result: LLM grading when possible, deterministic fallback otherwise.
func (v *Validator) Grade(ctx context.Context, req Request) *models.ValidationResult {
	if req.UseLLM && strings.TrimSpace(req.Material) != "" && v.llm != nil {
		result, err := v.GradeWithLLM(ctx, req)
		if err == nil {
			return result
		}
		log.Printf("WARN: LLM grading failed, falling back to deterministic grading: %v", err)
	}
	return v.gradeTraditional(req)
}

// GradeWithLLM runs the LLM grading path with no fallback: build the
// prompt, make the one backend call, parse the structured response,
// and recompute the aggregate from the per-question results. This is
// the path revalidation uses, where a failure must surface to the
// caller.
func (v *Validator) GradeWithLLM(ctx context.Context, req Request) (*models.ValidationResult, error) {
	if v.llm == nil {
		return nil, fmt.Errorf("no LLM backend configured")
	}
	if strings.TrimSpace(req.Material) == "" {
		return nil, fmt.Errorf("no reference material to grade against")
	}

	prompt := BuildGradingPrompt(req.Material, req.Questions, req.Answers)
	raw, err := v.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	result, err := ParseGradingResponse(raw)
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		msg := result.Error
		if result.ErrorMessage != "" {
			msg = fmt.Sprintf("%s: %s", msg, result.ErrorMessage)
		}
		return nil, fmt.Errorf("LLM reported grading error: %s", msg)
	}

	// The backend's own aggregate numbers are advisory; the envelope
	// totals are always recomputed from the per-question results so
	// both grading paths share one aggregation rule.
	finalize(result, models.ValidationMethodLLM)
	if result.ValidationConfidence == "" {
		result.ValidationConfidence = models.ConfidenceMedium
	}
	return result, nil
}

func (v *Validator) gradeTraditional(req Request) *models.ValidationResult {
	results := GradeDeterministically(req.Questions, req.Answers)

	result := &models.ValidationResult{
		Results:        results,
		GradingSummary: traditionalSummary(results),
	}
	finalize(result, models.ValidationMethodTraditional)
	result.ValidationConfidence = traditionalConfidence(results)
	return result
}

// finalize recomputes the aggregate fields from the per-question
// results. overall_score is the round-half-up arithmetic mean over
// graded questions only (unanswered and unmatched questions are
// excluded, not scored as zero); correct_answers is the
// whole-question-equivalent sum of credit, rounded to two decimals.
func finalize(result *models.ValidationResult, method string) {
	result.ValidationMethod = method
	result.TotalQuestions = len(result.Results)

	if len(result.Results) == 0 {
		result.OverallScore = 0
		result.CorrectAnswers = 0
		return
	}

	var sum float64
	for _, r := range result.Results {
		sum += r.ScorePercentage
	}
	result.OverallScore = roundHalfUp(sum / float64(len(result.Results)))
	result.CorrectAnswers = math.Round(sum) / 100
}

// roundHalfUp rounds to the nearest integer with halves going up,
// matching the documented scoring rule (math.Round rounds halves away
// from zero, which differs for negatives).
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func traditionalSummary(results []models.PerQuestionResult) string {
	exact := 0
	review := 0
	for _, r := range results {
		switch {
		case r.IsCorrect:
			exact++
		case r.ScorePercentage == PartialCreditScore:
			review++
		}
	}
	summary := fmt.Sprintf("Graded %d answers by exact comparison: %d correct.", len(results), exact)
	if review > 0 {
		summary += fmt.Sprintf(" %d free-text answers received fixed partial credit and require manual review.", review)
	}
	return summary
}

// traditionalConfidence is high when every graded question had an
// exact comparator and medium when any answer got the fixed
// manual-review credit.
func traditionalConfidence(results []models.PerQuestionResult) string {
	for _, r := range results {
		if r.QuestionType == models.QuestionShortAnswer || r.QuestionType == models.QuestionFillInBlank {
			return models.ConfidenceMedium
		}
	}
	return models.ConfidenceHigh
}
