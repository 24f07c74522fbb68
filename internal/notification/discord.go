package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
)

const (
	colorRed   = 16711680
	colorGreen = 65280
	colorBlue  = 3447003
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Discord posts embeds to webhook URLs. An empty URL disables that channel.
type Discord struct {
	SuccessURL string
	ErrorURL   string
	Client     *http.Client
}

// NewDiscordFromEnv reads the webhook URLs from the environment.
func NewDiscordFromEnv() *Discord {
	return &Discord{
		SuccessURL: properties.DiscordSuccessNotificationUrl(),
		ErrorURL:   properties.DiscordErrorNotificationUrl(),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether at least one webhook is configured.
func (d *Discord) Enabled() bool {
	return d.SuccessURL != "" || d.ErrorURL != ""
}

func (d *Discord) Correlation(label string, res correlation.Result) error {
	return d.send(d.SuccessURL, DiscordEmbed{
		Title:       "📈 Correlation",
		Description: formatCorrelation(label, res),
		Color:       colorBlue,
	})
}

func (d *Discord) Success(message string) error {
	return d.send(d.SuccessURL, DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: message,
		Color:       colorGreen,
	})
}

func (d *Discord) Failure(message string) error {
	return d.send(d.ErrorURL, DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("An error occurred: %s", message),
		Color:       colorRed,
	})
}

func (d *Discord) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
