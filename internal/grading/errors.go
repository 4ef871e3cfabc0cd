package grading

import "errors"

var (
	// ErrInvalidAnswerFormat reports a correct-answer encoding that
	// cannot be coerced to the question type's canonical form. It is a
	// quiz-creation-time failure; grading never sees it if creation
	// validated its inputs.
	ErrInvalidAnswerFormat = errors.New("invalid correct answer format")

	// ErrNoJSONFound reports an LLM grading response with no
	// brace-delimited JSON object anywhere in it.
	ErrNoJSONFound = errors.New("no JSON object found in response")

	// ErrMalformedResponse reports an LLM grading response whose JSON
	// could not be decoded or is missing required top-level fields.
	ErrMalformedResponse = errors.New("malformed grading response")
)
