// Package ntfy is a thin client for an ntfy-compatible push endpoint. It never
// retries; retry policy belongs to the reminder scheduler.
package ntfy

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/truedezigner/notch/internal/config"
)

type Message struct {
	Topic    string
	Title    string
	Body     string
	ClickURL string
	Priority int // 0 = endpoint default
	Tags     []string
}

type Client struct {
	baseURL     string
	topicPrefix string
	http        *http.Client
}

func NewClient(cfg config.NtfyConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		topicPrefix: cfg.TopicPrefix,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
}

// TopicForHandle derives the per-user topic name from a handle.
func (c *Client) TopicForHandle(handle string) string {
	return strings.ToLower(c.topicPrefix + handle)
}

// Publish posts the message body to <base>/<topic> with metadata headers.
// Any transport error or non-2xx response is a failure.
func (c *Client) Publish(ctx context.Context, m Message) error {
	url := c.baseURL + "/" + strings.TrimLeft(m.Topic, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(m.Body))
	if err != nil {
		return err
	}
	if m.Title != "" {
		req.Header.Set("Title", m.Title)
	}
	if m.ClickURL != "" {
		req.Header.Set("Click", m.ClickURL)
	}
	if m.Priority != 0 {
		req.Header.Set("Priority", strconv.Itoa(m.Priority))
	}
	if len(m.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(m.Tags, ","))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("publish to %s: unexpected status %d", m.Topic, resp.StatusCode)
	}
	return nil
}
