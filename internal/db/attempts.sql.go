package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createQuizAttempt = `-- name: CreateQuizAttempt :one
INSERT INTO quiz_attempts (quiz_id, user_id, score, answers, validation_results)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, quiz_id, user_id, score, answers, validation_results, submitted_at, revalidated_at
`

type CreateQuizAttemptParams struct {
	QuizID            uuid.UUID
	UserID            uuid.UUID
	Score             float64
	Answers           []byte
	ValidationResults []byte
}

func (q *Queries) CreateQuizAttempt(ctx context.Context, arg CreateQuizAttemptParams) (QuizAttempt, error) {
	row := q.db.QueryRow(ctx, createQuizAttempt,
		arg.QuizID, arg.UserID, arg.Score, arg.Answers, arg.ValidationResults)
	var i QuizAttempt
	err := row.Scan(&i.ID, &i.QuizID, &i.UserID, &i.Score, &i.Answers, &i.ValidationResults, &i.SubmittedAt, &i.RevalidatedAt)
	return i, err
}

const getQuizAttemptForUser = `-- name: GetQuizAttemptForUser :one
SELECT id, quiz_id, user_id, score, answers, validation_results, submitted_at, revalidated_at
FROM quiz_attempts
WHERE id = $1 AND user_id = $2
`

type GetQuizAttemptForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetQuizAttemptForUser(ctx context.Context, arg GetQuizAttemptForUserParams) (QuizAttempt, error) {
	row := q.db.QueryRow(ctx, getQuizAttemptForUser, arg.ID, arg.UserID)
	var i QuizAttempt
	err := row.Scan(&i.ID, &i.QuizID, &i.UserID, &i.Score, &i.Answers, &i.ValidationResults, &i.SubmittedAt, &i.RevalidatedAt)
	return i, err
}

const updateQuizAttemptValidation = `-- name: UpdateQuizAttemptValidation :one
UPDATE quiz_attempts
SET score = $2, validation_results = $3, revalidated_at = now()
WHERE id = $1
RETURNING id, quiz_id, user_id, score, answers, validation_results, submitted_at, revalidated_at
`

type UpdateQuizAttemptValidationParams struct {
	ID                uuid.UUID
	Score             float64
	ValidationResults []byte
}

func (q *Queries) UpdateQuizAttemptValidation(ctx context.Context, arg UpdateQuizAttemptValidationParams) (QuizAttempt, error) {
	row := q.db.QueryRow(ctx, updateQuizAttemptValidation, arg.ID, arg.Score, arg.ValidationResults)
	var i QuizAttempt
	err := row.Scan(&i.ID, &i.QuizID, &i.UserID, &i.Score, &i.Answers, &i.ValidationResults, &i.SubmittedAt, &i.RevalidatedAt)
	return i, err
}

const listQuizAttempts = `-- name: ListQuizAttempts :many
SELECT id, quiz_id, user_id, score, answers, validation_results, submitted_at, revalidated_at
FROM quiz_attempts
WHERE quiz_id = $1 AND user_id = $2
ORDER BY submitted_at DESC
`

type ListQuizAttemptsParams struct {
	QuizID uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) ListQuizAttempts(ctx context.Context, arg ListQuizAttemptsParams) ([]QuizAttempt, error) {
	rows, err := q.db.Query(ctx, listQuizAttempts, arg.QuizID, arg.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizAttempt
	for rows.Next() {
		var i QuizAttempt
		if err := rows.Scan(&i.ID, &i.QuizID, &i.UserID, &i.Score, &i.Answers, &i.ValidationResults, &i.SubmittedAt, &i.RevalidatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getUserQuizAnalytics = `-- name: GetUserQuizAnalytics :one
SELECT COUNT(*)                        AS total_attempts,
       COALESCE(AVG(score), 0)        AS average_score,
       COALESCE(MAX(score), 0)        AS best_score,
       COALESCE(MIN(score), 0)        AS worst_score,
       MAX(submitted_at)              AS last_attempt_at
FROM quiz_attempts
WHERE quiz_id = $1 AND user_id = $2
`

type GetUserQuizAnalyticsParams struct {
	QuizID uuid.UUID
	UserID uuid.UUID
}

type GetUserQuizAnalyticsRow struct {
	TotalAttempts int64
	AverageScore  float64
	BestScore     float64
	WorstScore    float64
	LastAttemptAt pgtype.Timestamptz
}

func (q *Queries) GetUserQuizAnalytics(ctx context.Context, arg GetUserQuizAnalyticsParams) (GetUserQuizAnalyticsRow, error) {
	row := q.db.QueryRow(ctx, getUserQuizAnalytics, arg.QuizID, arg.UserID)
	var i GetUserQuizAnalyticsRow
	err := row.Scan(&i.TotalAttempts, &i.AverageScore, &i.BestScore, &i.WorstScore, &i.LastAttemptAt)
	return i, err
}

const getUserAnalytics = `-- name: GetUserAnalytics :many
SELECT q.id AS quiz_id,
       q.title,
       COUNT(a.id)          AS total_attempts,
       AVG(a.score)         AS average_score,
       MAX(a.score)         AS best_score,
       MAX(a.submitted_at)  AS last_attempt_at
FROM quiz_attempts a
JOIN quizzes q ON q.id = a.quiz_id
WHERE a.user_id = $1
GROUP BY q.id, q.title
ORDER BY MAX(a.submitted_at) DESC
`

type GetUserAnalyticsRow struct {
	QuizID        uuid.UUID
	Title         string
	TotalAttempts int64
	AverageScore  float64
	BestScore     float64
	LastAttemptAt pgtype.Timestamptz
}

func (q *Queries) GetUserAnalytics(ctx context.Context, userID uuid.UUID) ([]GetUserAnalyticsRow, error) {
	rows, err := q.db.Query(ctx, getUserAnalytics, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetUserAnalyticsRow
	for rows.Next() {
		var i GetUserAnalyticsRow
		if err := rows.Scan(&i.QuizID, &i.Title, &i.TotalAttempts, &i.AverageScore, &i.BestScore, &i.LastAttemptAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
