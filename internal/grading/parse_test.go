package grading

import (
	"errors"
	"testing"
)

const wellFormedResponse = `{
	"validation_results": [
		{
			"question_id": "q-1",
			"question_type": "multiple-choice",
			"student_answer": "Option 1",
			"expected_answer": "Option 1",
			"is_correct": true,
			"score_percentage": 100,
			"feedback": "Matches the correct option."
		},
		{
			"question_id": "q-2",
			"question_type": "short-answer",
			"student_answer": "osmosis",
			"expected_answer": "diffusion of water",
			"is_correct": false,
			"score_percentage": 75,
			"feedback": "Close but incomplete.",
			"partial_credit_details": "Named the right mechanism without the gradient."
		}
	],
	"overall_score": 88,
	"total_questions": 2,
	"correct_answers": 1.75,
	"grading_summary": "Strong overall.",
	"validation_confidence": "high"
}`

func TestParseGradingResponseWellFormed(t *testing.T) {
	result, err := ParseGradingResponse(wellFormedResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	if !result.Results[0].IsCorrect || result.Results[0].ScorePercentage != 100 {
		t.Errorf("first entry mis-parsed: %+v", result.Results[0])
	}
	if result.Results[1].PartialCreditDetails == "" {
		t.Errorf("partial_credit_details dropped")
	}
	if result.ValidationConfidence != "high" {
		t.Errorf("confidence: got %q", result.ValidationConfidence)
	}
}

func TestParseGradingResponseIgnoresCommentary(t *testing.T) {
	// Backends prepend chatter despite instructions; the first balanced
	// object wins.
	raw := "Sure! Here is the grading you asked for:\n\n" + wellFormedResponse + "\n\nLet me know if you need anything else."
	result, err := ParseGradingResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(result.Results))
	}
}

func TestParseGradingResponseNoJSON(t *testing.T) {
	_, err := ParseGradingResponse("I could not grade these answers, sorry.")
	if !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("expected ErrNoJSONFound, got %v", err)
	}
}

func TestParseGradingResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "truncated object", raw: `{"validation_results": [{"question_id": "q-1"`},
		{name: "missing validation_results", raw: `{"overall_score": 50, "total_questions": 1, "correct_answers": 0.5}`},
		{name: "missing overall_score", raw: `{"validation_results": [], "total_questions": 0, "correct_answers": 0}`},
		{name: "missing total_questions", raw: `{"validation_results": [], "overall_score": 0, "correct_answers": 0}`},
		{name: "missing correct_answers", raw: `{"validation_results": [], "overall_score": 0, "total_questions": 0}`},
		{name: "wrong type for results", raw: `{"validation_results": "none", "overall_score": 0, "total_questions": 0, "correct_answers": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGradingResponse(tt.raw)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestParseGradingResponseDefaultsMissingEntryFields(t *testing.T) {
	raw := `{
		"validation_results": [
			{"question_id": "q-1", "score_percentage": 50},
			{"question_id": "q-2", "is_correct": true, "score_percentage": 100, "feedback": "Good."}
		],
		"overall_score": 75,
		"total_questions": 2,
		"correct_answers": 1.5
	}`

	result, err := ParseGradingResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("one thin entry must not drop the batch: got %d results", len(result.Results))
	}

	first := result.Results[0]
	if first.Feedback != DefaultFeedback {
		t.Errorf("missing feedback should default: got %q", first.Feedback)
	}
	if first.IsCorrect {
		t.Errorf("missing is_correct should default to false")
	}
	if first.ScorePercentage != 50 {
		t.Errorf("present score should survive defaulting: got %v", first.ScorePercentage)
	}
	if result.Results[1].Feedback != "Good." {
		t.Errorf("well-formed sibling entry altered: %+v", result.Results[1])
	}
}

func TestParseGradingResponseClampsScores(t *testing.T) {
	raw := `{
		"validation_results": [
			{"question_id": "q-1", "score_percentage": 140},
			{"question_id": "q-2", "score_percentage": -10}
		],
		"overall_score": 65,
		"total_questions": 2,
		"correct_answers": 1.3
	}`

	result, err := ParseGradingResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].ScorePercentage != 100 {
		t.Errorf("score above 100 not clamped: %v", result.Results[0].ScorePercentage)
	}
	if result.Results[1].ScorePercentage != 0 {
		t.Errorf("negative score not clamped: %v", result.Results[1].ScorePercentage)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{name: "bare object", text: `{"a":1}`, want: `{"a":1}`, found: true},
		{name: "surrounded by text", text: `before {"a":{"b":2}} after`, want: `{"a":{"b":2}}`, found: true},
		{name: "braces inside strings", text: `x {"a":"}{","b":1} y`, want: `{"a":"}{","b":1}`, found: true},
		{name: "escaped quote in string", text: `{"a":"say \"hi\" {"}`, want: `{"a":"say \"hi\" {"}`, found: true},
		{name: "no object", text: "nothing here", found: false},
		{name: "unterminated returns remainder", text: `noise {"a":1`, want: `{"a":1`, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractJSONObject(tt.text)
			if found != tt.found {
				t.Fatalf("found: got %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("span: got %q, want %q", got, tt.want)
			}
		})
	}
}
