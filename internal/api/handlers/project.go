package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"quizmentor/internal/db"
	"quizmentor/internal/extract"
	"quizmentor/internal/r2"
)

// maxUploadBytes bounds a single course material upload.
const maxUploadBytes = 20 << 20 // 20 MiB

// CreateProjectRequest defines the body for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// HandleCreateProject creates a new project for the current user.
func (h *Handler) HandleCreateProject(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project request", err)
		return
	}

	project, err := h.DB.Queries.CreateProject(c.Request.Context(), db.CreateProjectParams{
		UserID:      userID,
		Name:        req.Name,
		Description: pgtype.Text{String: req.Description, Valid: req.Description != ""},
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to create project", err)
		return
	}

	log.Printf("INFO: Created project %s for user %s", project.ID, userID)
	c.JSON(http.StatusCreated, projectResponse(project, 0, 0))
}

// HandleListProjects lists the current user's projects with file and
// quiz counts.
func (h *Handler) HandleListProjects(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	rows, err := h.DB.Queries.ListProjectsByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	projects := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, projectResponse(row.Project, row.FileCount, row.QuizCount))
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// HandleGetProject returns one project with its files and quizzes.
func (h *Handler) HandleGetProject(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project ID", err)
		return
	}

	ctx := c.Request.Context()
	project, err := h.DB.Queries.GetProjectForUser(ctx, db.GetProjectForUserParams{ID: projectID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		h.handleError(c, userID, http.StatusNotFound, "Project not found", err)
		return
	}
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project", err)
		return
	}

	files, err := h.DB.Queries.ListProjectFiles(ctx, projectID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project files", err)
		return
	}
	quizzes, err := h.DB.Queries.ListQuizzesByProject(ctx, projectID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project quizzes", err)
		return
	}

	fileList := make([]gin.H, 0, len(files))
	for _, f := range files {
		fileList = append(fileList, fileResponse(f))
	}
	quizList := make([]gin.H, 0, len(quizzes))
	for _, q := range quizzes {
		quizList = append(quizList, gin.H{
			"id":             q.ID,
			"title":          q.Title,
			"difficulty":     q.Difficulty,
			"question_count": q.QuestionCount,
			"attempt_count":  q.AttemptCount,
			"best_score":     q.BestScore,
			"created_at":     q.CreatedAt,
		})
	}

	resp := projectResponse(project, int64(len(files)), int64(len(quizzes)))
	resp["files"] = fileList
	resp["quizzes"] = quizList
	c.JSON(http.StatusOK, resp)
}

// HandleDeleteProject deletes a project, its stored files, quizzes and
// attempts (DB cascade handles the rows; R2 objects are removed here).
func (h *Handler) HandleDeleteProject(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project ID", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Queries.GetProjectForUser(ctx, db.GetProjectForUserParams{ID: projectID, UserID: userID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Project not found", err)
		} else {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project", err)
		}
		return
	}

	// Best-effort storage cleanup before the rows cascade away.
	if h.Storage != nil {
		files, err := h.DB.Queries.ListProjectFiles(ctx, projectID)
		if err != nil {
			log.Printf("WARN: Failed to list files for storage cleanup of project %s: %v", projectID, err)
		}
		for _, f := range files {
			if err := h.Storage.DeleteFile(ctx, f.StorageKey); err != nil {
				log.Printf("WARN: Failed to delete R2 object %s: %v", f.StorageKey, err)
			}
		}
	}

	if err := h.DB.Queries.DeleteProject(ctx, db.DeleteProjectParams{ID: projectID, UserID: userID}); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete project", err)
		return
	}

	log.Printf("INFO: Deleted project %s for user %s", projectID, userID)
	c.Status(http.StatusNoContent)
}

// HandleUploadProjectFile accepts one multipart course material file,
// extracts its text and stores both the original object and the
// extracted text.
func (h *Handler) HandleUploadProjectFile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project ID", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Queries.GetProjectForUser(ctx, db.GetProjectForUserParams{ID: projectID, UserID: userID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Project not found", err)
		} else {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project", err)
		}
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "No file in request", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.handleError(c, userID, http.StatusRequestEntityTooLarge, "File too large",
			fmt.Errorf("%d bytes exceeds the %d byte limit", fileHeader.Size, maxUploadBytes))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	text, err := extract.FromUpload(fileHeader.Filename, mimeType, data)
	if err != nil {
		// The file is still stored; it just contributes nothing to
		// quiz generation or grading.
		log.Printf("WARN: Text extraction failed for %s: %v", fileHeader.Filename, err)
		text = ""
	}

	fileID := uuid.New()
	storageKey := r2.ObjectKey(projectID, fileID, fileHeader.Filename)
	if h.Storage != nil {
		if err := h.Storage.UploadFile(ctx, storageKey, fileHeader.Filename, bytes.NewReader(data)); err != nil {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to store file", err)
			return
		}
	}

	file, err := h.DB.Queries.CreateProjectFile(ctx, db.CreateProjectFileParams{
		ProjectID:        projectID,
		OriginalFilename: fileHeader.Filename,
		FileSize:         fileHeader.Size,
		MimeType:         mimeType,
		StorageKey:       storageKey,
		ExtractedText:    pgtype.Text{String: text, Valid: text != ""},
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to record file", err)
		return
	}
	if err := h.DB.Queries.TouchProject(ctx, projectID); err != nil {
		log.Printf("WARN: Failed to touch project %s: %v", projectID, err)
	}

	log.Printf("INFO: Uploaded file %s (%d bytes, %d chars extracted) to project %s",
		file.OriginalFilename, file.FileSize, len(text), projectID)
	c.JSON(http.StatusCreated, fileResponse(file))
}

// HandleListProjectFiles lists a project's uploaded files.
func (h *Handler) HandleListProjectFiles(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project ID", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Queries.GetProjectForUser(ctx, db.GetProjectForUserParams{ID: projectID, UserID: userID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Project not found", err)
		} else {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project", err)
		}
		return
	}

	files, err := h.DB.Queries.ListProjectFiles(ctx, projectID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list files", err)
		return
	}

	fileList := make([]gin.H, 0, len(files))
	for _, f := range files {
		fileList = append(fileList, fileResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"files": fileList})
}

// HandleDeleteProjectFile removes one uploaded file and its stored
// object. Quizzes already generated from it keep working; grading that
// needs reference material will report NO_FILES once every file is
// gone.
func (h *Handler) HandleDeleteProjectFile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid file ID", err)
		return
	}

	ctx := c.Request.Context()
	file, err := h.DB.Queries.GetProjectFileForUser(ctx, db.GetProjectFileForUserParams{ID: fileID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		h.handleError(c, userID, http.StatusNotFound, "File not found", err)
		return
	}
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load file", err)
		return
	}

	if h.Storage != nil {
		if err := h.Storage.DeleteFile(ctx, file.StorageKey); err != nil {
			log.Printf("WARN: Failed to delete R2 object %s: %v", file.StorageKey, err)
		}
	}
	if err := h.DB.Queries.DeleteProjectFile(ctx, fileID); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete file", err)
		return
	}

	log.Printf("INFO: Deleted file %s from project %s", fileID, file.ProjectID)
	c.Status(http.StatusNoContent)
}

func projectResponse(p db.Project, fileCount, quizCount int64) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description.String,
		"file_count":  fileCount,
		"quiz_count":  quizCount,
		"created_at":  p.CreatedAt.Format(time.RFC3339),
		"updated_at":  p.UpdatedAt.Format(time.RFC3339),
	}
}

func fileResponse(f db.ProjectFile) gin.H {
	return gin.H{
		"id":                 f.ID,
		"project_id":         f.ProjectID,
		"original_filename":  f.OriginalFilename,
		"file_size":          f.FileSize,
		"mime_type":          f.MimeType,
		"has_extracted_text": f.ExtractedText.Valid,
		"uploaded_at":        f.UploadedAt.Format(time.RFC3339),
	}
}
