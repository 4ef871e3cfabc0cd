package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"quizmentor/internal/db"
)

// HandleGoogleLogin initiates the Google OAuth flow.
func (h *Handler) HandleGoogleLogin(c *gin.Context) {
	session := sessions.Default(c)

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		log.Printf("ERROR: Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}
	oauthStateString := base64.URLEncoding.EncodeToString(stateBytes)

	session.Set(OauthStateSessionKey, oauthStateString)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	url := h.OauthConfig.AuthCodeURL(oauthStateString, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// HandleGoogleCallback handles the redirect back from Google.
func (h *Handler) HandleGoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	retrievedState := session.Get(OauthStateSessionKey)
	originalState := c.Query("state")

	if originalState == "" || retrievedState == nil || retrievedState.(string) != originalState {
		log.Printf("WARN: Invalid state parameter. Session state: %v, Query state: %s", retrievedState, originalState)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter."})
		return
	}

	code := c.Query("code")
	token, err := h.OauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("ERROR: Failed to exchange code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange code"})
		return
	}
	if !token.Valid() {
		log.Printf("WARN: Retrieved invalid token.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Retrieved invalid token"})
		return
	}

	client := h.OauthConfig.Client(context.Background(), token)
	oauth2Service, err := oauth2api.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		log.Printf("ERROR: Failed to create OAuth2 service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create OAuth2 service"})
		return
	}

	userinfo, err := oauth2Service.Userinfo.V2.Me.Get().Do()
	if err != nil {
		log.Printf("ERROR: Failed to get user info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}

	ctx := c.Request.Context()
	dbUser, err := h.DB.Queries.GetUserByEmail(ctx, userinfo.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: Failed to get user by email: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking user profile"})
			return
		}

		log.Printf("INFO: User with email %s not found, creating new user.", userinfo.Email)
		dbUser, err = h.DB.Queries.CreateUser(ctx, db.CreateUserParams{
			Email:    userinfo.Email,
			Name:     pgtype.Text{String: userinfo.Name, Valid: userinfo.Name != ""},
			GoogleID: pgtype.Text{String: userinfo.Id, Valid: userinfo.Id != ""},
			Picture:  pgtype.Text{String: userinfo.Picture, Valid: userinfo.Picture != ""},
		})
		if err != nil {
			log.Printf("ERROR: Failed to create user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user profile"})
			return
		}
		log.Printf("INFO: Created user with ID %s for email %s", dbUser.ID, dbUser.Email)
		h.notify.userEvent("New Signup", dbUser.Name.String, dbUser.Email)
	} else {
		log.Printf("INFO: Found existing user with ID %s for email %s", dbUser.ID, dbUser.Email)
		h.notify.userEvent("User Login", dbUser.Name.String, dbUser.Email)
	}

	profile := UserProfile{
		DatabaseID:    dbUser.ID,
		GoogleID:      userinfo.Id,
		Email:         userinfo.Email,
		VerifiedEmail: userinfo.VerifiedEmail != nil && *userinfo.VerifiedEmail,
		Name:          userinfo.Name,
		GivenName:     userinfo.GivenName,
		FamilyName:    userinfo.FamilyName,
		Picture:       userinfo.Picture,
		Locale:        userinfo.Locale,
	}

	session.Set(ProfileSessionKey, profile)
	session.Delete(OauthStateSessionKey)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session after login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontendURL)
}

// HandleUserProfile returns the authenticated user's profile.
func (h *Handler) HandleUserProfile(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated or session invalid"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// HandleLogout clears the session.
func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)

	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session during logout: %v", err)
	}

	c.Status(http.StatusOK)
}

// HandleAuthStatus checks if a user is currently authenticated via
// session.
func (h *Handler) HandleAuthStatus(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          profile,
	})
}
