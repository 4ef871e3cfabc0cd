package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Discord embed structures (subset of the webhook API).
type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type webhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

// notifier posts operational events to a Discord webhook. The webhook
// URL comes from DISCORD_WEBHOOK_URL; when unset every send is a
// silent no-op.
type notifier struct {
	webhookURL string
	client     *http.Client
}

func newNotifier(client *http.Client) *notifier {
	return &notifier{
		webhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		client:     client,
	}
}

// send posts one embed asynchronously so notifications never block the
// request path.
func (n *notifier) send(embed discordEmbed) {
	go func() {
		if n.webhookURL == "" {
			return
		}
		if embed.Timestamp == "" {
			embed.Timestamp = time.Now().Format(time.RFC3339)
		}

		payload := webhookPayload{
			Username: "QuizMentor Notifier",
			Embeds:   []discordEmbed{embed},
		}
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ERROR: Failed to marshal Discord payload: %v", err)
			return
		}

		req, err := http.NewRequest("POST", n.webhookURL, bytes.NewBuffer(jsonPayload))
		if err != nil {
			log.Printf("ERROR: Failed to create Discord request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			log.Printf("ERROR: Failed to send Discord notification: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			log.Printf("ERROR: Discord notification failed with status %d: %s", resp.StatusCode, string(bodyBytes))
		}
	}()
}

func (n *notifier) userEvent(title, name, email string) {
	n.send(discordEmbed{
		Title: title,
		Color: 0x00FF00,
		Fields: []discordEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", name, email), Inline: false},
		},
	})
}

func (n *notifier) apiError(errorContext string, err error, userID uuid.UUID, path string, statusCode int) {
	embed := discordEmbed{
		Title:       fmt.Sprintf("API Error: %s", errorContext),
		Description: fmt.Sprintf("```%s```", err.Error()),
		Color:       0xFF0000,
	}
	if userID != uuid.Nil {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "User ID", Value: userID.String(), Inline: true})
	}
	embed.Fields = append(embed.Fields,
		discordEmbedField{Name: "HTTP Status", Value: fmt.Sprintf("%d", statusCode), Inline: true},
		discordEmbedField{Name: "Path", Value: path, Inline: false},
	)
	n.send(embed)
}
