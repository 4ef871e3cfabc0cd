package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"quizmentor/internal/db"
	"quizmentor/internal/extract"
	"quizmentor/internal/grading"
	"quizmentor/internal/llm"
	"quizmentor/internal/models"
)

// GenerateQuizRequest defines the body for quiz generation.
type GenerateQuizRequest struct {
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// HandleGenerateQuiz generates a quiz from a project's extracted
// material.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid project ID", err)
		return
	}

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid quiz generation request", err)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if !validDifficulties[req.Difficulty] {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid difficulty",
			fmt.Errorf("difficulty must be easy, medium or hard, got %q", req.Difficulty))
		return
	}
	if req.QuestionCount <= 0 {
		req.QuestionCount = 10
	}
	if req.QuestionCount > 50 {
		req.QuestionCount = 50
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

	// Assemble the reference material from the project's extracted
	// file texts.
	materialRows, err := h.DB.Queries.GetProjectMaterial(ctx, projectID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load project material", err)
		return
	}
	sections := make([]extract.Section, 0, len(materialRows))
	for _, row := range materialRows {
		sections = append(sections, extract.Section{Name: row.OriginalFilename, Text: row.ExtractedText.String})
	}
	material := extract.JoinSections(sections)
	if strings.TrimSpace(material) == "" {
		h.handleErrorCode(c, userID, http.StatusBadRequest, "NO_FILES",
			"Project has no files with extractable text", errors.New("no reference material"))
		return
	}

	generated, err := h.LLM.GenerateQuiz(ctx, material, req.Difficulty, req.QuestionCount)
	if err != nil {
		h.handleError(c, userID, http.StatusBadGateway, "Quiz generation failed", err)
		return
	}

	quiz, err := h.DB.Queries.CreateQuiz(ctx, db.CreateQuizParams{
		ProjectID:     projectID,
		Title:         generated.Title,
		Difficulty:    req.Difficulty,
		QuestionCount: int32(len(generated.Questions)),
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to create quiz", err)
		return
	}

	params := questionParams(quiz.ID, generated.Questions)
	questions := make([]db.QuizQuestion, 0, len(params))
	for _, p := range params {
		question, err := h.DB.Queries.CreateQuizQuestion(ctx, p)
		if err != nil {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to store quiz question", err)
			return
		}
		questions = append(questions, question)
	}

	if len(questions) == 0 {
		if err := h.DB.Queries.DeleteQuiz(ctx, quiz.ID); err != nil {
			log.Printf("WARN: Failed to delete empty quiz %s: %v", quiz.ID, err)
		}
		h.handleError(c, userID, http.StatusBadGateway, "Quiz generation produced no usable questions",
			fmt.Errorf("all %d generated questions were rejected", len(generated.Questions)))
		return
	}
	if err := h.DB.Queries.TouchProject(ctx, projectID); err != nil {
		log.Printf("WARN: Failed to touch project %s: %v", projectID, err)
	}

	log.Printf("INFO: Generated quiz %s (%d questions, difficulty %s) for project %s",
		quiz.ID, len(questions), req.Difficulty, projectID)
	h.notify.send(discordEmbed{
		Title: "Quiz Generated",
		Color: 0x3498DB,
		Fields: []discordEmbedField{
			{Name: "Title", Value: quiz.Title, Inline: false},
			{Name: "Questions", Value: fmt.Sprintf("%d", len(questions)), Inline: true},
			{Name: "Difficulty", Value: req.Difficulty, Inline: true},
		},
	})
	c.JSON(http.StatusCreated, quizResponse(quiz, questions))
}

// questionParams filters a generation batch down to storable questions
// and assigns display order. Order starts at 1 and counts only kept
// questions, so stored quizzes never have gaps or a zeroth question.
// Unusable questions are skipped with a warning rather than failing the
// whole quiz.
func questionParams(quizID uuid.UUID, generated []llm.GeneratedQuestion) []db.CreateQuizQuestionParams {
	params := make([]db.CreateQuizQuestionParams, 0, len(generated))
	order := 1
	for _, gq := range generated {
		qt := models.QuestionType(gq.Type)
		switch qt {
		case models.QuestionMultipleChoice, models.QuestionTrueFalse,
			models.QuestionShortAnswer, models.QuestionFillInBlank:
		default:
			log.Printf("WARN: Skipping generated question with unknown type %q", gq.Type)
			continue
		}
		if qt == models.QuestionMultipleChoice && len(gq.Options) < 2 {
			log.Printf("WARN: Skipping multiple-choice question with %d options", len(gq.Options))
			continue
		}

		// Normalizing at creation time guarantees the stored encoding
		// round-trips through the graders later.
		answer, err := grading.NormalizeCorrectAnswer(gq.CorrectAnswerText(), qt)
		if err != nil {
			log.Printf("WARN: Skipping generated question with bad correct answer: %v", err)
			continue
		}

		var options []byte
		if len(gq.Options) > 0 {
			if options, err = json.Marshal(gq.Options); err != nil {
				log.Printf("WARN: Skipping question with unencodable options: %v", err)
				continue
			}
		}

		params = append(params, db.CreateQuizQuestionParams{
			QuizID:        quizID,
			QuestionText:  gq.Text,
			QuestionType:  string(qt),
			Options:       options,
			CorrectAnswer: grading.EncodeCorrectAnswer(answer),
			Explanation:   pgtype.Text{String: gq.Explanation, Valid: gq.Explanation != ""},
			QuestionOrder: int32(order),
		})
		order++
	}
	return params
}

// HandleGetQuiz returns one quiz with its questions.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
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
	quiz, err := h.DB.Queries.GetQuizForUser(ctx, db.GetQuizForUserParams{ID: quizID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
		return
	}
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load quiz", err)
		return
	}

	questions, err := h.DB.Queries.ListQuizQuestions(ctx, quizID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to load quiz questions", err)
		return
	}

	c.JSON(http.StatusOK, quizResponse(quiz, questions))
}

// HandleDeleteQuiz deletes a quiz and its attempts.
func (h *Handler) HandleDeleteQuiz(c *gin.Context) {
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
	if _, err := h.DB.Queries.GetQuizForUser(ctx, db.GetQuizForUserParams{ID: quizID, UserID: userID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Quiz not found", err)
		} else {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to load quiz", err)
		}
		return
	}

	if err := h.DB.Queries.DeleteQuiz(ctx, quizID); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete quiz", err)
		return
	}

	log.Printf("INFO: Deleted quiz %s for user %s", quizID, userID)
	c.Status(http.StatusNoContent)
}

func quizResponse(quiz db.Quiz, questions []db.QuizQuestion) gin.H {
	questionList := make([]gin.H, 0, len(questions))
	for _, q := range questions {
		entry := gin.H{
			"id":             q.ID,
			"text":           q.QuestionText,
			"type":           q.QuestionType,
			"correct_answer": q.CorrectAnswer,
			"explanation":    q.Explanation.String,
			"order":          q.QuestionOrder,
		}
		if len(q.Options) > 0 {
			var options []string
			if err := json.Unmarshal(q.Options, &options); err == nil {
				entry["options"] = options
			}
		}
		questionList = append(questionList, entry)
	}
	return gin.H{
		"id":             quiz.ID,
		"project_id":     quiz.ProjectID,
		"title":          quiz.Title,
		"difficulty":     quiz.Difficulty,
		"question_count": quiz.QuestionCount,
		"questions":      questionList,
		"created_at":     quiz.CreatedAt.Format(time.RFC3339),
	}
}
