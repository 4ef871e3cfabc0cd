package main

import (
	"context"
	"database/sql" // session store uses database/sql over the pgx stdlib adapter
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizmentor/internal/api"
	"quizmentor/internal/api/handlers"
	"quizmentor/internal/db"
	"quizmentor/internal/grading"
	"quizmentor/internal/llm"
	"quizmentor/internal/r2"
	"quizmentor/internal/service"

	sessions "github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const storeName = "quizmentor_session"

var (
	googleOauthConfig *oauth2.Config
	sessionSecretKey  []byte
)

func init() {
	// Load environment variables first.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty!")
	}
	sessionSecretKey = []byte(secret)

	// Register types stored in sessions.
	gob.Register(handlers.UserProfile{})

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL environment variables must be set.")
	}

	googleOauthConfig = &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	database, err := db.NewDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Initialize the LLM backend
	llmClient, err := llm.NewClient(ctx, llm.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer llmClient.Close()

	// Object storage is optional; storage stays nil when R2 is not
	// configured and uploads keep only their extracted text.
	storage, err := r2.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}

	// Grading stack: validator over the LLM backend, attempt service
	// over the query layer.
	validator := grading.NewValidator(llmClient)
	attempts := service.NewAttemptService(service.NewPGStore(database.Queries), validator)

	router := gin.Default()

	// --- Session Configuration ---
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FATAL: DATABASE_URL environment variable must be set.")
	}

	sessionDB, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database connection for session store: %v", err)
	}
	defer sessionDB.Close()
	if err := sessionDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database for session store: %v", err)
	}

	store, err := gsessions.NewStore(sessionDB, sessionSecretKey)
	if err != nil {
		log.Fatalf("Failed to create postgres session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		Secure:   os.Getenv("SESSION_SECURE") == "true",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	handler := handlers.NewHandler(googleOauthConfig, database, llmClient, storage, attempts)
	api.SetupRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
