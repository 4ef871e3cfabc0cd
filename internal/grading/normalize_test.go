package grading

import (
	"errors"
	"reflect"
	"testing"

	"quizmentor/internal/models"
)

func TestNormalizeCorrectAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		qtype   models.QuestionType
		want    models.AnswerValue
		wantErr bool
	}{
		{name: "multiple choice integer", raw: "2", qtype: models.QuestionMultipleChoice, want: models.ChoiceAnswer(2)},
		{name: "multiple choice padded", raw: " 1 ", qtype: models.QuestionMultipleChoice, want: models.ChoiceAnswer(1)},
		{name: "multiple choice json number", raw: "3.0", qtype: models.QuestionMultipleChoice, want: models.ChoiceAnswer(3)},
		{name: "true false zero", raw: "0", qtype: models.QuestionTrueFalse, want: models.ChoiceAnswer(0)},
		{name: "choice non numeric", raw: "B", qtype: models.QuestionMultipleChoice, wantErr: true},
		{name: "choice non integer", raw: "1.5", qtype: models.QuestionTrueFalse, wantErr: true},
		{name: "fill in blank json list", raw: `["mitochondria","ribosome"]`, qtype: models.QuestionFillInBlank, want: models.BlanksAnswer([]string{"mitochondria", "ribosome"})},
		{name: "fill in blank scalar wraps", raw: "osmosis", qtype: models.QuestionFillInBlank, want: models.BlanksAnswer([]string{"osmosis"})},
		{name: "fill in blank malformed list wraps", raw: "[not json", qtype: models.QuestionFillInBlank, want: models.BlanksAnswer([]string{"[not json"})},
		{name: "short answer passthrough", raw: "The Krebs cycle", qtype: models.QuestionShortAnswer, want: models.TextAnswer("The Krebs cycle")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCorrectAnswer(tt.raw, tt.qtype)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAnswerFormat) {
					t.Fatalf("expected ErrInvalidAnswerFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeNormalizeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value models.AnswerValue
		qtype models.QuestionType
	}{
		{name: "choice", value: models.ChoiceAnswer(2), qtype: models.QuestionMultipleChoice},
		{name: "text", value: models.TextAnswer("photosynthesis"), qtype: models.QuestionShortAnswer},
		{name: "blanks", value: models.BlanksAnswer([]string{"a", "b"}), qtype: models.QuestionFillInBlank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeCorrectAnswer(tt.value)
			got, err := NormalizeCorrectAnswer(encoded, tt.qtype)
			if err != nil {
				t.Fatalf("normalize after encode failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("round trip changed value: got %+v, want %+v", got, tt.value)
			}
		})
	}
}

func TestFormatExpectedAnswer(t *testing.T) {
	tf := models.Question{Type: models.QuestionTrueFalse}
	if got := FormatExpectedAnswer(tf, models.ChoiceAnswer(0)); got != "True" {
		t.Errorf("true-false index 0: got %q, want True", got)
	}
	if got := FormatExpectedAnswer(tf, models.ChoiceAnswer(1)); got != "False" {
		t.Errorf("true-false index 1: got %q, want False", got)
	}

	mc := models.Question{Type: models.QuestionMultipleChoice, Options: []string{"Paris", "Lyon"}}
	if got := FormatExpectedAnswer(mc, models.ChoiceAnswer(1)); got != "Lyon" {
		t.Errorf("option text: got %q, want Lyon", got)
	}
	if got := FormatExpectedAnswer(mc, models.ChoiceAnswer(5)); got != "Option 5" {
		t.Errorf("out of range option: got %q, want Option 5", got)
	}
}
