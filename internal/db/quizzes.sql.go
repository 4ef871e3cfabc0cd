package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createQuiz = `-- name: CreateQuiz :one
INSERT INTO quizzes (project_id, title, difficulty, question_count)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, title, difficulty, question_count, created_at
`

type CreateQuizParams struct {
	ProjectID     uuid.UUID
	Title         string
	Difficulty    string
	QuestionCount int32
}

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, createQuiz, arg.ProjectID, arg.Title, arg.Difficulty, arg.QuestionCount)
	var i Quiz
	err := row.Scan(&i.ID, &i.ProjectID, &i.Title, &i.Difficulty, &i.QuestionCount, &i.CreatedAt)
	return i, err
}

const createQuizQuestion = `-- name: CreateQuizQuestion :one
INSERT INTO quiz_questions (quiz_id, question_text, question_type, options, correct_answer, explanation, question_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, quiz_id, question_text, question_type, options, correct_answer, explanation, question_order
`

type CreateQuizQuestionParams struct {
	QuizID        uuid.UUID
	QuestionText  string
	QuestionType  string
	Options       []byte
	CorrectAnswer string
	Explanation   pgtype.Text
	QuestionOrder int32
}

func (q *Queries) CreateQuizQuestion(ctx context.Context, arg CreateQuizQuestionParams) (QuizQuestion, error) {
	row := q.db.QueryRow(ctx, createQuizQuestion,
		arg.QuizID, arg.QuestionText, arg.QuestionType, arg.Options, arg.CorrectAnswer, arg.Explanation, arg.QuestionOrder)
	var i QuizQuestion
	err := row.Scan(&i.ID, &i.QuizID, &i.QuestionText, &i.QuestionType, &i.Options, &i.CorrectAnswer, &i.Explanation, &i.QuestionOrder)
	return i, err
}

const getQuizForUser = `-- name: GetQuizForUser :one
SELECT q.id, q.project_id, q.title, q.difficulty, q.question_count, q.created_at
FROM quizzes q
JOIN projects p ON p.id = q.project_id
WHERE q.id = $1 AND p.user_id = $2
`

type GetQuizForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetQuizForUser(ctx context.Context, arg GetQuizForUserParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, getQuizForUser, arg.ID, arg.UserID)
	var i Quiz
	err := row.Scan(&i.ID, &i.ProjectID, &i.Title, &i.Difficulty, &i.QuestionCount, &i.CreatedAt)
	return i, err
}

const listQuizQuestions = `-- name: ListQuizQuestions :many
SELECT id, quiz_id, question_text, question_type, options, correct_answer, explanation, question_order
FROM quiz_questions
WHERE quiz_id = $1
ORDER BY question_order ASC
`

func (q *Queries) ListQuizQuestions(ctx context.Context, quizID uuid.UUID) ([]QuizQuestion, error) {
	rows, err := q.db.Query(ctx, listQuizQuestions, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizQuestion
	for rows.Next() {
		var i QuizQuestion
		if err := rows.Scan(&i.ID, &i.QuizID, &i.QuestionText, &i.QuestionType, &i.Options, &i.CorrectAnswer, &i.Explanation, &i.QuestionOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listQuizzesByProject = `-- name: ListQuizzesByProject :many
SELECT q.id, q.project_id, q.title, q.difficulty, q.question_count, q.created_at,
       (SELECT COUNT(*) FROM quiz_attempts a WHERE a.quiz_id = q.id) AS attempt_count,
       (SELECT COALESCE(MAX(a.score), 0) FROM quiz_attempts a WHERE a.quiz_id = q.id) AS best_score
FROM quizzes q
WHERE q.project_id = $1
ORDER BY q.created_at DESC
`

type ListQuizzesByProjectRow struct {
	Quiz
	AttemptCount int64
	BestScore    float64
}

func (q *Queries) ListQuizzesByProject(ctx context.Context, projectID uuid.UUID) ([]ListQuizzesByProjectRow, error) {
	rows, err := q.db.Query(ctx, listQuizzesByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListQuizzesByProjectRow
	for rows.Next() {
		var i ListQuizzesByProjectRow
		if err := rows.Scan(&i.ID, &i.ProjectID, &i.Title, &i.Difficulty, &i.QuestionCount, &i.CreatedAt, &i.AttemptCount, &i.BestScore); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteQuiz = `-- name: DeleteQuiz :exec
DELETE FROM quizzes
WHERE id = $1
`

func (q *Queries) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteQuiz, id)
	return err
}
