package api

import (
	"github.com/gin-gonic/gin"

	"quizmentor/internal/api/handlers"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware())

	// --- Public Auth Routes ---
	router.GET("/login", handler.HandleGoogleLogin)
	router.GET("/auth/google/callback", handler.HandleGoogleCallback)

	api := router.Group("/api")
	{
		api.GET("/auth/status", handler.HandleAuthStatus)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			// --- Project & File Routes ---
			authorized.POST("/projects", handler.HandleCreateProject)
			authorized.GET("/projects", handler.HandleListProjects)
			authorized.GET("/projects/:projectId", handler.HandleGetProject)
			authorized.DELETE("/projects/:projectId", handler.HandleDeleteProject)
			authorized.POST("/projects/:projectId/files", handler.HandleUploadProjectFile)
			authorized.GET("/projects/:projectId/files", handler.HandleListProjectFiles)
			authorized.DELETE("/files/:fileId", handler.HandleDeleteProjectFile)

			// --- Quiz Routes ---
			authorized.POST("/projects/:projectId/quizzes/generate", handler.HandleGenerateQuiz)
			authorized.GET("/quizzes/:quizId", handler.HandleGetQuiz)
			authorized.DELETE("/quizzes/:quizId", handler.HandleDeleteQuiz)

			// --- Attempt Routes ---
			authorized.POST("/quizzes/:quizId/submit", handler.HandleSubmitAttempt)
			authorized.GET("/quizzes/:quizId/attempts", handler.HandleListAttempts)
			authorized.GET("/quiz-attempts/:attemptId", handler.HandleGetAttempt)
			authorized.POST("/quiz-attempts/:attemptId/revalidate", handler.HandleRevalidateAttempt)
			authorized.GET("/quiz-attempts/:attemptId/export", handler.HandleExportAttempt)
			authorized.GET("/analytics/quizzes", handler.HandleUserAnalytics)
		}
	}
}
