package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionShortAnswer    QuestionType = "short-answer"
	QuestionFillInBlank    QuestionType = "fill-in-blank"
)

// AnswerKind selects the active variant of an AnswerValue.
type AnswerKind int

const (
	// AnswerChoice is an option index (multiple-choice, true-false).
	AnswerChoice AnswerKind = iota
	// AnswerText is a free-form string (short-answer).
	AnswerText
	// AnswerBlanks is an ordered list of strings (fill-in-blank).
	AnswerBlanks
)

// AnswerValue is the canonical form of a correct answer. The question
// type selects which variant is active, so graders never branch on the
// raw stored encoding.
type AnswerValue struct {
	Kind   AnswerKind
	Choice int
	Text   string
	Blanks []string
}

// ChoiceAnswer returns an AnswerValue holding an option index.
func ChoiceAnswer(idx int) AnswerValue {
	return AnswerValue{Kind: AnswerChoice, Choice: idx}
}

// TextAnswer returns an AnswerValue holding free-form text.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: s}
}

// BlanksAnswer returns an AnswerValue holding ordered blank answers.
func BlanksAnswer(blanks []string) AnswerValue {
	return AnswerValue{Kind: AnswerBlanks, Blanks: blanks}
}

// Question is one question of a quiz. Immutable once the quiz is
// created. CorrectAnswer holds the normalized stored encoding (see
// grading.NormalizeCorrectAnswer); Options is present only for
// multiple-choice questions.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	QuizID        uuid.UUID    `json:"quiz_id,omitempty"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Order         int          `json:"order"`
}

// Quiz is an ordered set of questions generated from a project's
// reference material.
type Quiz struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	Title         string     `json:"title"`
	Difficulty    string     `json:"difficulty"`
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StudentAnswer is one submitted answer. Only the fields relevant to
// the referenced question's type are meaningful; the rest are ignored.
// SelectedOption is a pointer so an absent choice is distinguishable
// from option 0.
type StudentAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *int      `json:"selected_option,omitempty"`
	AnswerText     string    `json:"answer_text,omitempty"`
	FillInAnswers  []string  `json:"fill_in_answers,omitempty"`
}

// PerQuestionResult is the graded outcome for a single answer.
// QuestionID is a string because LLM responses echo ids as opaque
// text; it matches Question.ID.String() for results we produce.
type PerQuestionResult struct {
	QuestionID           string       `json:"question_id"`
	QuestionType         QuestionType `json:"question_type"`
	StudentAnswer        string       `json:"student_answer"`
	ExpectedAnswer       string       `json:"expected_answer"`
	IsCorrect            bool         `json:"is_correct"`
	ScorePercentage      float64      `json:"score_percentage"`
	Feedback             string       `json:"feedback"`
	PartialCreditDetails string       `json:"partial_credit_details,omitempty"`
}

// Validation method and confidence values stored inside a
// ValidationResult.
const (
	ValidationMethodLLM         = "llm"
	ValidationMethodTraditional = "traditional"

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ValidationResult is the envelope around one grading run. It is
// persisted verbatim on the attempt row so a grading pass can be
// audited and re-derived later.
type ValidationResult struct {
	Results              []PerQuestionResult `json:"validation_results"`
	OverallScore         float64             `json:"overall_score"`
	TotalQuestions       int                 `json:"total_questions"`
	CorrectAnswers       float64             `json:"correct_answers"`
	GradingSummary       string              `json:"grading_summary,omitempty"`
	ValidationConfidence string              `json:"validation_confidence,omitempty"`
	ValidationMethod     string              `json:"validation_method"`
	Error                string              `json:"error,omitempty"`
	ErrorMessage         string              `json:"error_message,omitempty"`
}

// Attempt is one student's submission of answers to a quiz. Created
// once per submission; only revalidation may mutate it, and it rewrites
// exactly Score, ValidationResults and RevalidatedAt.
type Attempt struct {
	ID                uuid.UUID         `json:"id"`
	QuizID            uuid.UUID         `json:"quiz_id"`
	UserID            uuid.UUID         `json:"user_id"`
	Score             float64           `json:"score"`
	Answers           []StudentAnswer   `json:"answers"`
	ValidationResults *ValidationResult `json:"validation_results,omitempty"`
	SubmittedAt       time.Time         `json:"submitted_at"`
	RevalidatedAt     *time.Time        `json:"revalidated_at,omitempty"`
}

// Project groups uploaded course material files.
type Project struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectFile is one uploaded course material file. ExtractedText is
// the plaintext pulled out at upload time and used as grading ground
// truth.
type ProjectFile struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	StorageKey       string    `json:"storage_key"`
	ExtractedText    string    `json:"-"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// ErrorResponse is the uniform error body returned by the API.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}
