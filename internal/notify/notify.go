// Package notify delivers new-game notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const userAgent = "starrecord/0.1"

// Service is the notification surface the watch and import flows use.
type Service interface {
	NotifyNewGame(ctx context.Context, title, message string) error
}

// New builds a notification service. With an ntfy topic configured the
// message is pushed over HTTP; otherwise it is printed to the console.
func New(ntfyTopic string) Service {
	topic := strings.TrimSpace(ntfyTopic)
	if topic == "" {
		return consoleService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type consoleService struct{}

func (consoleService) NotifyNewGame(_ context.Context, title, message string) error {
	fmt.Fprintf(os.Stdout, "\n%s\n%s\n%s\n%s\n\n",
		strings.Repeat("=", 50), title, message, strings.Repeat("=", 50))
	return nil
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyNewGame(ctx context.Context, title, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Title", title)
	req.Header.Set("Tags", "starrecord,game")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: status %d", resp.StatusCode)
	}
	return nil
}
