package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"quizmentor/internal/db"
	"quizmentor/internal/llm"
	"quizmentor/internal/models"
	"quizmentor/internal/r2"
	"quizmentor/internal/service"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	DatabaseID    uuid.UUID `json:"-"`  // Our internal DB UUID (omit from JSON response to client)
	GoogleID      string    `json:"id"` // Google's ID
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	GivenName     string    `json:"given_name"`
	FamilyName    string    `json:"family_name"`
	Picture       string    `json:"picture"`
	Locale        string    `json:"locale"`
}

// Session keys - keep these consistent.
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
)

// Handler contains the API handlers' dependencies.
type Handler struct {
	OauthConfig *oauth2.Config
	DB          *db.DB
	LLM         *llm.Client
	Storage     *r2.Client
	Store       *service.PGStore
	Attempts    *service.AttemptService
	notify      *notifier
}

// NewHandler creates a new Handler. storage may be nil when R2 is not
// configured.
func NewHandler(oauth *oauth2.Config, database *db.DB, llmClient *llm.Client, storage *r2.Client, attempts *service.AttemptService) *Handler {
	return &Handler{
		OauthConfig: oauth,
		DB:          database,
		LLM:         llmClient,
		Storage:     storage,
		Store:       service.NewPGStore(database.Queries),
		Attempts:    attempts,
		notify:      newNotifier(&http.Client{Timeout: 5 * time.Second}),
	}
}

// userID returns the authenticated user's internal ID, set by the
// AuthRequired middleware.
func (h *Handler) userID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		log.Printf("ERROR: userID in context has unexpected type %T", value)
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// handleError logs an error, notifies the ops webhook, and aborts the
// request with the uniform error body.
func (h *Handler) handleError(c *gin.Context, userID uuid.UUID, statusCode int, errorContext string, err error) {
	log.Printf("ERROR: %s: %v (UserID: %s)", errorContext, err, userID)

	if statusCode >= http.StatusInternalServerError {
		h.notify.apiError(errorContext, err, userID, c.Request.URL.Path, statusCode)
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: errorContext})
}

// handleErrorCode is handleError with a machine-readable error_code the
// frontend branches on (e.g. NO_FILES, VALIDATION_ERROR).
func (h *Handler) handleErrorCode(c *gin.Context, userID uuid.UUID, statusCode int, code, message string, err error) {
	log.Printf("ERROR: %s (%s): %v (UserID: %s)", message, code, err, userID)
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message, ErrorCode: code})
}
