// Package service orchestrates grading over stored quizzes and
// attempts: submission, revalidation and export.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"quizmentor/internal/grading"
	"quizmentor/internal/models"
)

var (
	// ErrQuizNotFound means the quiz does not exist or is not owned by
	// the requesting user.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound means the attempt does not exist or is not
	// owned by the requesting user.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrNoReferenceMaterial means revalidation was requested but the
	// project no longer has any extracted file text to grade against.
	ErrNoReferenceMaterial = errors.New("no reference material available")
	// ErrValidationFailed means the LLM grading pass failed during
	// revalidation. Unlike submission, revalidation never falls back.
	ErrValidationFailed = errors.New("validation failed")
)

// Store is the persistence the attempt workflows need.
type Store interface {
	QuizForUser(ctx context.Context, quizID, userID uuid.UUID) (models.Quiz, error)
	QuizQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	// QuizMaterial returns the combined extracted text of the quiz's
	// project files, empty when no files carry text.
	QuizMaterial(ctx context.Context, quizID uuid.UUID) (string, error)
	InsertAttempt(ctx context.Context, attempt models.Attempt) (models.Attempt, error)
	AttemptForUser(ctx context.Context, attemptID, userID uuid.UUID) (models.Attempt, error)
	UpdateAttemptValidation(ctx context.Context, attemptID uuid.UUID, score float64, result *models.ValidationResult) (models.Attempt, error)
}

// AttemptService runs the grading workflows against a Store.
type AttemptService struct {
	store     Store
	validator *grading.Validator
}

func NewAttemptService(store Store, validator *grading.Validator) *AttemptService {
	return &AttemptService{store: store, validator: validator}
}

// Submit grades a submission and records it as a new attempt. Every
// submission inserts a fresh row; retaking a quiz never overwrites
// history. Grading cannot fail here: if the LLM path is unavailable or
// breaks, the deterministic grader takes over.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID uuid.UUID, answers []models.StudentAnswer, useLLM bool) (models.Attempt, error) {
	if _, err := s.store.QuizForUser(ctx, quizID, userID); err != nil {
		return models.Attempt{}, err
	}
	questions, err := s.store.QuizQuestions(ctx, quizID)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to load quiz questions: %w", err)
	}

	material := ""
	if useLLM {
		material, err = s.store.QuizMaterial(ctx, quizID)
		if err != nil {
			// Submission must still succeed; grade deterministically.
			log.Printf("WARN: failed to load reference material for quiz %s: %v", quizID, err)
			material = ""
		}
	}

	result := s.validator.Grade(ctx, grading.Request{
		Questions: questions,
		Answers:   answers,
		Material:  material,
		UseLLM:    useLLM,
	})

	attempt, err := s.store.InsertAttempt(ctx, models.Attempt{
		QuizID:            quizID,
		UserID:            userID,
		Score:             result.OverallScore,
		Answers:           answers,
		ValidationResults: result,
	})
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to record attempt: %w", err)
	}
	return attempt, nil
}

// RevalidateOutcome reports a revalidation: the rewritten attempt plus
// how the score moved.
type RevalidateOutcome struct {
	Attempt         models.Attempt
	PreviousScore   float64
	ScoreDifference float64
}

// Revalidate re-runs LLM grading over a stored attempt's original
// answers and rewrites the attempt's score and validation results in
// place. The stored answers, quiz, user and submission time never
// change. There is no deterministic fallback on this path; failures
// surface so the caller knows the stored result is unchanged.
func (s *AttemptService) Revalidate(ctx context.Context, userID, attemptID uuid.UUID) (RevalidateOutcome, error) {
	attempt, err := s.store.AttemptForUser(ctx, attemptID, userID)
	if err != nil {
		return RevalidateOutcome{}, err
	}
	questions, err := s.store.QuizQuestions(ctx, attempt.QuizID)
	if err != nil {
		return RevalidateOutcome{}, fmt.Errorf("failed to load quiz questions: %w", err)
	}
	material, err := s.store.QuizMaterial(ctx, attempt.QuizID)
	if err != nil {
		return RevalidateOutcome{}, fmt.Errorf("failed to load reference material: %w", err)
	}
	if strings.TrimSpace(material) == "" {
		return RevalidateOutcome{}, ErrNoReferenceMaterial
	}

	result, err := s.validator.GradeWithLLM(ctx, grading.Request{
		Questions: questions,
		Answers:   attempt.Answers,
		Material:  material,
		UseLLM:    true,
	})
	if err != nil {
		return RevalidateOutcome{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	updated, err := s.store.UpdateAttemptValidation(ctx, attempt.ID, result.OverallScore, result)
	if err != nil {
		return RevalidateOutcome{}, fmt.Errorf("failed to store revalidation: %w", err)
	}
	return RevalidateOutcome{
		Attempt:         updated,
		PreviousScore:   attempt.Score,
		ScoreDifference: updated.Score - attempt.Score,
	}, nil
}

// ExportRow is one question of an exported attempt.
type ExportRow struct {
	Question       string  `json:"question"`
	QuestionType   string  `json:"question_type"`
	StudentAnswer  string  `json:"student_answer"`
	ExpectedAnswer string  `json:"expected_answer"`
	Score          float64 `json:"score"`
	IsCorrect      bool    `json:"is_correct"`
	Feedback       string  `json:"feedback,omitempty"`
}

// AttemptExport is a self-contained report of one graded attempt.
type AttemptExport struct {
	QuizTitle        string      `json:"quiz_title"`
	Score            float64     `json:"score"`
	SubmittedAt      string      `json:"submitted_at"`
	RevalidatedAt    string      `json:"revalidated_at,omitempty"`
	ValidationMethod string      `json:"validation_method,omitempty"`
	Rows             []ExportRow `json:"results"`
}

// Export assembles a report of one attempt by joining its stored
// per-question results back to the quiz's question texts.
func (s *AttemptService) Export(ctx context.Context, userID, attemptID uuid.UUID) (AttemptExport, error) {
	attempt, err := s.store.AttemptForUser(ctx, attemptID, userID)
	if err != nil {
		return AttemptExport{}, err
	}
	quiz, err := s.store.QuizForUser(ctx, attempt.QuizID, userID)
	if err != nil {
		return AttemptExport{}, err
	}
	questions, err := s.store.QuizQuestions(ctx, attempt.QuizID)
	if err != nil {
		return AttemptExport{}, fmt.Errorf("failed to load quiz questions: %w", err)
	}

	textByID := make(map[string]string, len(questions))
	for _, q := range questions {
		textByID[q.ID.String()] = q.Text
	}

	export := AttemptExport{
		QuizTitle:   quiz.Title,
		Score:       attempt.Score,
		SubmittedAt: attempt.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
	}
	if attempt.RevalidatedAt != nil {
		export.RevalidatedAt = attempt.RevalidatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	if attempt.ValidationResults == nil {
		return export, nil
	}
	export.ValidationMethod = attempt.ValidationResults.ValidationMethod
	for _, r := range attempt.ValidationResults.Results {
		export.Rows = append(export.Rows, ExportRow{
			Question:       textByID[r.QuestionID],
			QuestionType:   string(r.QuestionType),
			StudentAnswer:  r.StudentAnswer,
			ExpectedAnswer: r.ExpectedAnswer,
			Score:          r.ScorePercentage,
			IsCorrect:      r.IsCorrect,
			Feedback:       r.Feedback,
		})
	}
	return export, nil
}
