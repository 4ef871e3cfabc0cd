package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProjectFile = `-- name: CreateProjectFile :one
INSERT INTO project_files (project_id, original_filename, file_size, mime_type, storage_key, extracted_text)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, project_id, original_filename, file_size, mime_type, storage_key, extracted_text, uploaded_at
`

type CreateProjectFileParams struct {
	ProjectID        uuid.UUID
	OriginalFilename string
	FileSize         int64
	MimeType         string
	StorageKey       string
	ExtractedText    pgtype.Text
}

func (q *Queries) CreateProjectFile(ctx context.Context, arg CreateProjectFileParams) (ProjectFile, error) {
	row := q.db.QueryRow(ctx, createProjectFile,
		arg.ProjectID, arg.OriginalFilename, arg.FileSize, arg.MimeType, arg.StorageKey, arg.ExtractedText)
	var i ProjectFile
	err := row.Scan(&i.ID, &i.ProjectID, &i.OriginalFilename, &i.FileSize, &i.MimeType, &i.StorageKey, &i.ExtractedText, &i.UploadedAt)
	return i, err
}

const listProjectFiles = `-- name: ListProjectFiles :many
SELECT id, project_id, original_filename, file_size, mime_type, storage_key, extracted_text, uploaded_at
FROM project_files
WHERE project_id = $1
ORDER BY uploaded_at ASC
`

func (q *Queries) ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]ProjectFile, error) {
	rows, err := q.db.Query(ctx, listProjectFiles, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProjectFile
	for rows.Next() {
		var i ProjectFile
		if err := rows.Scan(&i.ID, &i.ProjectID, &i.OriginalFilename, &i.FileSize, &i.MimeType, &i.StorageKey, &i.ExtractedText, &i.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getProjectFileForUser = `-- name: GetProjectFileForUser :one
SELECT f.id, f.project_id, f.original_filename, f.file_size, f.mime_type, f.storage_key, f.extracted_text, f.uploaded_at
FROM project_files f
JOIN projects p ON p.id = f.project_id
WHERE f.id = $1 AND p.user_id = $2
`

type GetProjectFileForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetProjectFileForUser(ctx context.Context, arg GetProjectFileForUserParams) (ProjectFile, error) {
	row := q.db.QueryRow(ctx, getProjectFileForUser, arg.ID, arg.UserID)
	var i ProjectFile
	err := row.Scan(&i.ID, &i.ProjectID, &i.OriginalFilename, &i.FileSize, &i.MimeType, &i.StorageKey, &i.ExtractedText, &i.UploadedAt)
	return i, err
}

const deleteProjectFile = `-- name: DeleteProjectFile :exec
DELETE FROM project_files
WHERE id = $1
`

func (q *Queries) DeleteProjectFile(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteProjectFile, id)
	return err
}

const getProjectMaterial = `-- name: GetProjectMaterial :many
SELECT original_filename, extracted_text
FROM project_files
WHERE project_id = $1 AND extracted_text IS NOT NULL
ORDER BY uploaded_at ASC
`

type GetProjectMaterialRow struct {
	OriginalFilename string
	ExtractedText    pgtype.Text
}

func (q *Queries) GetProjectMaterial(ctx context.Context, projectID uuid.UUID) ([]GetProjectMaterialRow, error) {
	rows, err := q.db.Query(ctx, getProjectMaterial, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProjectMaterialRow
	for rows.Next() {
		var i GetProjectMaterialRow
		if err := rows.Scan(&i.OriginalFilename, &i.ExtractedText); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getProjectMaterialByQuiz = `-- name: GetProjectMaterialByQuiz :many
SELECT f.original_filename, f.extracted_text
FROM project_files f
JOIN quizzes q ON q.project_id = f.project_id
WHERE q.id = $1 AND f.extracted_text IS NOT NULL
ORDER BY f.uploaded_at ASC
`

func (q *Queries) GetProjectMaterialByQuiz(ctx context.Context, quizID uuid.UUID) ([]GetProjectMaterialRow, error) {
	rows, err := q.db.Query(ctx, getProjectMaterialByQuiz, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProjectMaterialRow
	for rows.Next() {
		var i GetProjectMaterialRow
		if err := rows.Scan(&i.OriginalFilename, &i.ExtractedText); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
