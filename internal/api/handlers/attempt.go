package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizmentor/internal/db"
	"quizmentor/internal/models"
	"quizmentor/internal/service"
)

// SubmitAttemptRequest defines the body for submitting quiz answers.
type SubmitAttemptRequest struct {
	Answers          []models.StudentAnswer `json:"answers" binding:"required"`
	UseLLMValidation bool                   `json:"use_llm_validation"`
}

// HandleSubmitAttempt grades a submission and records it as a new
// attempt. Grading never fails the request: if LLM validation was
// requested but is unavailable, the deterministic grader takes over
// and validation_method in the response says which path ran.
func (h *Handler) HandleSubmitAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid quiz ID", err)
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid submission", err)
		return
	}

	attempt, err := h.Attempts.Submit(c.Request.Context(), userID, quizID, req.Answers, req.UseLLMValidation)
	if errors.Is(err, service.ErrQuizNotFound) {
		h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
		return
	}
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to grade submission", err)
		return
	}

	c.JSON(http.StatusCreated, submitResponse(&attempt))
}

// submitResponse shapes the graded-attempt body. detailed_feedback
// tells the client whether the per-question results carry AI-written
// explanations or just the deterministic comparator's stock text.
func submitResponse(attempt *models.Attempt) gin.H {
	result := attempt.ValidationResults
	return gin.H{
		"attempt_id":            attempt.ID,
		"score":                 attempt.Score,
		"correct_answers":       result.CorrectAnswers,
		"total_questions":       result.TotalQuestions,
		"results":               result.Results,
		"grading_summary":       result.GradingSummary,
		"validation_confidence": result.ValidationConfidence,
		"validation_method":     result.ValidationMethod,
		"detailed_feedback":     result.ValidationMethod == models.ValidationMethodLLM,
		"submitted_at":          attempt.SubmittedAt.Format(time.RFC3339),
	}
}

// HandleRevalidateAttempt re-runs LLM grading over a stored attempt.
// Unlike submission this path has no deterministic fallback: the
// caller asked for an AI second opinion, so failures surface with an
// error code and the stored result stays untouched.
func (h *Handler) HandleRevalidateAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid attempt ID", err)
		return
	}

	outcome, err := h.Attempts.Revalidate(c.Request.Context(), userID, attemptID)
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		h.handleError(c, userID, http.StatusNotFound, "Attempt not found", err)
		return
	case errors.Is(err, service.ErrNoReferenceMaterial):
		h.handleErrorCode(c, userID, http.StatusBadRequest, "NO_FILES",
			"Project files are no longer available for validation", err)
		return
	case errors.Is(err, service.ErrValidationFailed):
		h.handleErrorCode(c, userID, http.StatusBadGateway, "VALIDATION_ERROR",
			"AI validation failed; the stored result is unchanged", err)
		return
	case err != nil:
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to revalidate attempt", err)
		return
	}

	attempt := outcome.Attempt
	c.JSON(http.StatusOK, gin.H{
		"attempt_id":         attempt.ID,
		"old_score":          outcome.PreviousScore,
		"new_score":          attempt.Score,
		"score_difference":   outcome.ScoreDifference,
		"validation_results": attempt.ValidationResults,
		"validation_method":  models.ValidationMethodLLM,
		"revalidated_at":     attempt.RevalidatedAt.Format(time.RFC3339),
	})
}

// HandleGetAttempt returns one stored attempt with its validation
// results.
func (h *Handler) HandleGetAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid attempt ID", err)
		return
	}

	attempt, err := h.Store.AttemptForUser(c.Request.Context(), attemptID, userID)
	if errors.Is(err, service.ErrAttemptNotFound) {
		h.handleError(c, userID, http.StatusNotFound, "Attempt not found", err)
		return
	}
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load attempt", err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// HandleListAttempts returns a user's attempt history for one quiz,
// newest first, with summary analytics.
func (h *Handler) HandleListAttempts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid quiz ID", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.QuizForUser(ctx, quizID, userID); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
		} else {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to load quiz", err)
		}
		return
	}

	attempts, err := h.Store.ListAttempts(ctx, quizID, userID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list attempts", err)
		return
	}
	stats, err := h.DB.Queries.GetUserQuizAnalytics(ctx, db.GetUserQuizAnalyticsParams{QuizID: quizID, UserID: userID})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load attempt analytics", err)
		return
	}

	history := make([]gin.H, 0, len(attempts))
	for _, a := range attempts {
		entry := gin.H{
			"attempt_id":   a.ID,
			"score":        a.Score,
			"submitted_at": a.SubmittedAt.Format(time.RFC3339),
		}
		if a.ValidationResults != nil {
			entry["validation_method"] = a.ValidationResults.ValidationMethod
			entry["correct_answers"] = a.ValidationResults.CorrectAnswers
			entry["total_questions"] = a.ValidationResults.TotalQuestions
		}
		if a.RevalidatedAt != nil {
			entry["revalidated_at"] = a.RevalidatedAt.Format(time.RFC3339)
		}
		history = append(history, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": history,
		"analytics": gin.H{
			"total_attempts": stats.TotalAttempts,
			"average_score":  stats.AverageScore,
			"best_score":     stats.BestScore,
			"worst_score":    stats.WorstScore,
		},
	})
}

// HandleExportAttempt returns a self-contained report of one graded
// attempt.
func (h *Handler) HandleExportAttempt(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid attempt ID", err)
		return
	}

	export, err := h.Attempts.Export(c.Request.Context(), userID, attemptID)
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		h.handleError(c, userID, http.StatusNotFound, "Attempt not found", err)
		return
	case errors.Is(err, service.ErrQuizNotFound):
		h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
		return
	case err != nil:
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to export attempt", err)
		return
	}

	c.JSON(http.StatusOK, export)
}

// HandleUserAnalytics summarizes the user's attempt history across all
// quizzes they have taken.
func (h *Handler) HandleUserAnalytics(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	rows, err := h.DB.Queries.GetUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load analytics", err)
		return
	}

	quizzes := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		entry := gin.H{
			"quiz_id":        row.QuizID,
			"title":          row.Title,
			"total_attempts": row.TotalAttempts,
			"average_score":  row.AverageScore,
			"best_score":     row.BestScore,
		}
		if row.LastAttemptAt.Valid {
			entry["last_attempt_at"] = row.LastAttemptAt.Time.Format(time.RFC3339)
		}
		quizzes = append(quizzes, entry)
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}
