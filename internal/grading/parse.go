package grading

import (
	"encoding/json"
	"fmt"

	"quizmentor/internal/models"
)

// DefaultFeedback fills a per-question result entry whose feedback the
// LLM omitted.
const DefaultFeedback = "Unable to validate this answer"

// ExtractJSONObject returns the first balanced {...} span in text.
// LLM backends routinely prepend or append commentary despite
// instructions, so the scanner walks brace depth while staying aware
// of JSON strings and escapes. The second return is false when no
// opening brace exists at all; an unterminated object returns the
// remainder of the text and lets the JSON decoder report it.
func ExtractJSONObject(text string) (string, bool) {
	start := -1
	for i, ch := range text {
		if ch == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return text[start:], true
}

// gradingPayload is the tolerant decode target for an LLM grading
// response. Top-level fields are pointers so a missing required field
// is distinguishable from a zero value; per-question entries decode
// individually so one malformed entry cannot invalidate the batch.
type gradingPayload struct {
	Results              []json.RawMessage `json:"validation_results"`
	OverallScore         *float64          `json:"overall_score"`
	TotalQuestions       *int              `json:"total_questions"`
	CorrectAnswers       *float64          `json:"correct_answers"`
	GradingSummary       string            `json:"grading_summary"`
	ValidationConfidence string            `json:"validation_confidence"`
	Error                string            `json:"error"`
	ErrorMessage         string            `json:"error_message"`
}

type resultEntry struct {
	QuestionID           *string              `json:"question_id"`
	QuestionType         *models.QuestionType `json:"question_type"`
	StudentAnswer        *string              `json:"student_answer"`
	ExpectedAnswer       *string              `json:"expected_answer"`
	IsCorrect            *bool                `json:"is_correct"`
	ScorePercentage      *float64             `json:"score_percentage"`
	Feedback             *string              `json:"feedback"`
	PartialCreditDetails *string              `json:"partial_credit_details"`
}

// ParseGradingResponse turns the raw text returned by the LLM backend
// into a ValidationResult. It fails with ErrNoJSONFound when no JSON
// object exists in the text and ErrMalformedResponse when the object
// cannot be decoded or lacks a required top-level field. Missing
// fields inside individual result entries are filled with documented
// defaults instead of failing the whole batch.
func ParseGradingResponse(raw string) (*models.ValidationResult, error) {
	span, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, ErrNoJSONFound
	}

	var payload gradingPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if payload.Results == nil {
		return nil, fmt.Errorf("%w: missing validation_results", ErrMalformedResponse)
	}
	if payload.OverallScore == nil {
		return nil, fmt.Errorf("%w: missing overall_score", ErrMalformedResponse)
	}
	if payload.TotalQuestions == nil {
		return nil, fmt.Errorf("%w: missing total_questions", ErrMalformedResponse)
	}
	if payload.CorrectAnswers == nil {
		return nil, fmt.Errorf("%w: missing correct_answers", ErrMalformedResponse)
	}

	results := make([]models.PerQuestionResult, 0, len(payload.Results))
	for _, rawEntry := range payload.Results {
		results = append(results, decodeResultEntry(rawEntry))
	}

	return &models.ValidationResult{
		Results:              results,
		OverallScore:         *payload.OverallScore,
		TotalQuestions:       *payload.TotalQuestions,
		CorrectAnswers:       *payload.CorrectAnswers,
		GradingSummary:       payload.GradingSummary,
		ValidationConfidence: payload.ValidationConfidence,
		Error:                payload.Error,
		ErrorMessage:         payload.ErrorMessage,
	}, nil
}

// decodeResultEntry decodes one validation_results entry, substituting
// defaults for anything missing or undecodable: is_correct=false,
// score_percentage=0, feedback=DefaultFeedback.
func decodeResultEntry(raw json.RawMessage) models.PerQuestionResult {
	result := models.PerQuestionResult{Feedback: DefaultFeedback}

	var entry resultEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return result
	}

	if entry.QuestionID != nil {
		result.QuestionID = *entry.QuestionID
	}
	if entry.QuestionType != nil {
		result.QuestionType = *entry.QuestionType
	}
	if entry.StudentAnswer != nil {
		result.StudentAnswer = *entry.StudentAnswer
	}
	if entry.ExpectedAnswer != nil {
		result.ExpectedAnswer = *entry.ExpectedAnswer
	}
	if entry.IsCorrect != nil {
		result.IsCorrect = *entry.IsCorrect
	}
	if entry.ScorePercentage != nil {
		result.ScorePercentage = clampScore(*entry.ScorePercentage)
	}
	if entry.Feedback != nil && *entry.Feedback != "" {
		result.Feedback = *entry.Feedback
	}
	if entry.PartialCreditDetails != nil {
		result.PartialCreditDetails = *entry.PartialCreditDetails
	}
	return result
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
