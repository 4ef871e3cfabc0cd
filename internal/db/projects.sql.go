package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProject = `-- name: CreateProject :one
INSERT INTO projects (user_id, name, description)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, description, created_at, updated_at
`

type CreateProjectParams struct {
	UserID      uuid.UUID
	Name        string
	Description pgtype.Text
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.UserID, arg.Name, arg.Description)
	var i Project
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Description, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getProjectForUser = `-- name: GetProjectForUser :one
SELECT id, user_id, name, description, created_at, updated_at
FROM projects
WHERE id = $1 AND user_id = $2
`

type GetProjectForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetProjectForUser(ctx context.Context, arg GetProjectForUserParams) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectForUser, arg.ID, arg.UserID)
	var i Project
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Description, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listProjectsByUser = `-- name: ListProjectsByUser :many
SELECT p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM project_files f WHERE f.project_id = p.id) AS file_count,
       (SELECT COUNT(*) FROM quizzes q WHERE q.project_id = p.id) AS quiz_count
FROM projects p
WHERE p.user_id = $1
ORDER BY p.updated_at DESC
`

type ListProjectsByUserRow struct {
	Project
	FileCount int64
	QuizCount int64
}

func (q *Queries) ListProjectsByUser(ctx context.Context, userID uuid.UUID) ([]ListProjectsByUserRow, error) {
	rows, err := q.db.Query(ctx, listProjectsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListProjectsByUserRow
	for rows.Next() {
		var i ListProjectsByUserRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Description, &i.CreatedAt, &i.UpdatedAt, &i.FileCount, &i.QuizCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteProject = `-- name: DeleteProject :exec
DELETE FROM projects
WHERE id = $1 AND user_id = $2
`

type DeleteProjectParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteProject(ctx context.Context, arg DeleteProjectParams) error {
	_, err := q.db.Exec(ctx, deleteProject, arg.ID, arg.UserID)
	return err
}

const touchProject = `-- name: TouchProject :exec
UPDATE projects
SET updated_at = now()
WHERE id = $1
`

func (q *Queries) TouchProject(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, touchProject, id)
	return err
}
