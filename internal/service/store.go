package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizmentor/internal/db"
	"quizmentor/internal/extract"
	"quizmentor/internal/models"
)

// PGStore is the Postgres-backed Store over the generated queries.
type PGStore struct {
	q *db.Queries
}

func NewPGStore(q *db.Queries) *PGStore {
	return &PGStore{q: q}
}

func (s *PGStore) QuizForUser(ctx context.Context, quizID, userID uuid.UUID) (models.Quiz, error) {
	row, err := s.q.GetQuizForUser(ctx, db.GetQuizForUserParams{ID: quizID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return models.Quiz{}, err
	}
	return models.Quiz{
		ID:            row.ID,
		ProjectID:     row.ProjectID,
		Title:         row.Title,
		Difficulty:    row.Difficulty,
		QuestionCount: int(row.QuestionCount),
		CreatedAt:     row.CreatedAt,
	}, nil
}

func (s *PGStore) QuizQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	rows, err := s.q.ListQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions := make([]models.Question, 0, len(rows))
	for _, row := range rows {
		q := models.Question{
			ID:            row.ID,
			QuizID:        row.QuizID,
			Text:          row.QuestionText,
			Type:          models.QuestionType(row.QuestionType),
			CorrectAnswer: row.CorrectAnswer,
			Explanation:   row.Explanation.String,
			Order:         int(row.QuestionOrder),
		}
		if len(row.Options) > 0 {
			if err := json.Unmarshal(row.Options, &q.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options for question %s: %w", row.ID, err)
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *PGStore) QuizMaterial(ctx context.Context, quizID uuid.UUID) (string, error) {
	rows, err := s.q.GetProjectMaterialByQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	sections := make([]extract.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, extract.Section{
			Name: row.OriginalFilename,
			Text: row.ExtractedText.String,
		})
	}
	return extract.JoinSections(sections), nil
}

func (s *PGStore) InsertAttempt(ctx context.Context, attempt models.Attempt) (models.Attempt, error) {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to encode answers: %w", err)
	}
	var results []byte
	if attempt.ValidationResults != nil {
		if results, err = json.Marshal(attempt.ValidationResults); err != nil {
			return models.Attempt{}, fmt.Errorf("failed to encode validation results: %w", err)
		}
	}
	row, err := s.q.CreateQuizAttempt(ctx, db.CreateQuizAttemptParams{
		QuizID:            attempt.QuizID,
		UserID:            attempt.UserID,
		Score:             attempt.Score,
		Answers:           answers,
		ValidationResults: results,
	})
	if err != nil {
		return models.Attempt{}, err
	}
	return attemptFromRow(row)
}

func (s *PGStore) AttemptForUser(ctx context.Context, attemptID, userID uuid.UUID) (models.Attempt, error) {
	row, err := s.q.GetQuizAttemptForUser(ctx, db.GetQuizAttemptForUserParams{ID: attemptID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Attempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return models.Attempt{}, err
	}
	return attemptFromRow(row)
}

func (s *PGStore) UpdateAttemptValidation(ctx context.Context, attemptID uuid.UUID, score float64, result *models.ValidationResult) (models.Attempt, error) {
	results, err := json.Marshal(result)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to encode validation results: %w", err)
	}
	row, err := s.q.UpdateQuizAttemptValidation(ctx, db.UpdateQuizAttemptValidationParams{
		ID:                attemptID,
		Score:             score,
		ValidationResults: results,
	})
	if err != nil {
		return models.Attempt{}, err
	}
	return attemptFromRow(row)
}

// ListAttempts returns a user's attempts at a quiz, newest first.
func (s *PGStore) ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]models.Attempt, error) {
	rows, err := s.q.ListQuizAttempts(ctx, db.ListQuizAttemptsParams{QuizID: quizID, UserID: userID})
	if err != nil {
		return nil, err
	}
	attempts := make([]models.Attempt, 0, len(rows))
	for _, row := range rows {
		a, err := attemptFromRow(row)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func attemptFromRow(row db.QuizAttempt) (models.Attempt, error) {
	attempt := models.Attempt{
		ID:          row.ID,
		QuizID:      row.QuizID,
		UserID:      row.UserID,
		Score:       row.Score,
		SubmittedAt: row.SubmittedAt,
	}
	if err := json.Unmarshal(row.Answers, &attempt.Answers); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to decode answers for attempt %s: %w", row.ID, err)
	}
	if len(row.ValidationResults) > 0 {
		var vr models.ValidationResult
		if err := json.Unmarshal(row.ValidationResults, &vr); err != nil {
			return models.Attempt{}, fmt.Errorf("failed to decode validation results for attempt %s: %w", row.ID, err)
		}
		attempt.ValidationResults = &vr
	}
	if row.RevalidatedAt.Valid {
		t := row.RevalidatedAt.Time
		attempt.RevalidatedAt = &t
	}
	return attempt, nil
}
