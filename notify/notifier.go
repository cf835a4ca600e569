package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Message struct {
	Title  string  `json:"title"`
	Body   string  `json:"body,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Notifier delivers booking event messages. Callers treat delivery as
// fire-and-forget; a failed send never fails the booking operation.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

type Client struct {
	webhookURL string
	client     *http.Client
}

func NewClient(webhookURL string) *Client {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	return &Client{
		webhookURL: webhookURL,
		client:     client,
	}
}

func (c *Client) Send(ctx context.Context, message Message) error {
	if len(strings.TrimSpace(c.webhookURL)) == 0 {
		return errors.New("webhook URL cannot be empty")
	}

	body, err := json.Marshal(message)

	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("failed create new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)

	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		bodyBytes, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return fmt.Errorf("request failed with status %d; also failed reading body: %w", res.StatusCode, readErr)
		}
		return fmt.Errorf("request failed with status '%v' and body:\n%v", res.StatusCode, string(bodyBytes))
	}

	return nil
}
