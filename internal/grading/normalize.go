package grading

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"quizmentor/internal/models"
)

// NormalizeCorrectAnswer coerces a raw correct-answer encoding into
// its canonical AnswerValue for the given question type. Stored
// answers arrive as TEXT and generated answers arrive as loose JSON,
// so the raw value may be a string-encoded integer, a JSON-encoded
// list, or a plain string.
//
// This must be applied both when a quiz is created and when questions
// are read back for grading; applying it on only one side is the
// classic source of grading bugs.
func NormalizeCorrectAnswer(raw string, qt models.QuestionType) (models.AnswerValue, error) {
	switch qt {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		trimmed := strings.TrimSpace(raw)
		if idx, err := strconv.Atoi(trimmed); err == nil {
			return models.ChoiceAnswer(idx), nil
		}
		// LLM output sometimes encodes indices as JSON numbers ("1.0").
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == float64(int(f)) {
			return models.ChoiceAnswer(int(f)), nil
		}
		return models.AnswerValue{}, fmt.Errorf("%w: %q is not an option index for %s", ErrInvalidAnswerFormat, raw, qt)

	case models.QuestionFillInBlank:
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") {
			var blanks []string
			if err := json.Unmarshal([]byte(trimmed), &blanks); err == nil {
				return models.BlanksAnswer(blanks), nil
			}
		}
		// A scalar wraps into a singleton list.
		return models.BlanksAnswer([]string{raw}), nil

	default: // short-answer
		return models.TextAnswer(raw), nil
	}
}

// EncodeCorrectAnswer converts a canonical AnswerValue back into the
// TEXT encoding used for storage. Encoding then normalizing round-trips
// to the same value.
func EncodeCorrectAnswer(v models.AnswerValue) string {
	switch v.Kind {
	case models.AnswerChoice:
		return strconv.Itoa(v.Choice)
	case models.AnswerBlanks:
		data, err := json.Marshal(v.Blanks)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return v.Text
	}
}

// FormatExpectedAnswer renders the canonical correct answer of a
// question as the human-readable echo used in grading feedback and
// audit fields.
func FormatExpectedAnswer(q models.Question, v models.AnswerValue) string {
	switch v.Kind {
	case models.AnswerChoice:
		if q.Type == models.QuestionTrueFalse {
			if v.Choice == 0 {
				return "True"
			}
			return "False"
		}
		if v.Choice >= 0 && v.Choice < len(q.Options) {
			return q.Options[v.Choice]
		}
		return fmt.Sprintf("Option %d", v.Choice)
	case models.AnswerBlanks:
		return strings.Join(v.Blanks, ", ")
	default:
		return v.Text
	}
}

// FormatStudentAnswer renders what the student submitted for a
// question, for the audit echo in per-question results.
func FormatStudentAnswer(q models.Question, a models.StudentAnswer) string {
	switch q.Type {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		if a.SelectedOption == nil {
			return "No answer"
		}
		sel := *a.SelectedOption
		if q.Type == models.QuestionTrueFalse {
			if sel == 0 {
				return "True"
			}
			return "False"
		}
		if sel >= 0 && sel < len(q.Options) {
			return q.Options[sel]
		}
		return fmt.Sprintf("Option %d", sel)
	case models.QuestionFillInBlank:
		return strings.Join(a.FillInAnswers, ", ")
	default:
		return a.AnswerText
	}
}
