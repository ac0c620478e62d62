package ntfy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truedezigner/notch/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.NtfyConfig{
		BaseURL:     baseURL,
		TopicPrefix: "notch-",
		Timeout:     2 * time.Second,
	})
}

func TestTopicForHandle(t *testing.T) {
	c := newTestClient("http://example")
	assert.Equal(t, "notch-alice", c.TopicForHandle("Alice"))
}

func TestPublishSendsHeadersAndBody(t *testing.T) {
	var gotPath, gotTitle, gotClick, gotPriority, gotTags, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotClick = r.Header.Get("Click")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Publish(context.Background(), Message{
		Topic:    "notch-alice",
		Title:    "Reminder",
		Body:     "water the plants",
		ClickURL: "http://app/todos/t1",
		Priority: 4,
		Tags:     []string{"todo", "home"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/notch-alice", gotPath)
	assert.Equal(t, "Reminder", gotTitle)
	assert.Equal(t, "http://app/todos/t1", gotClick)
	assert.Equal(t, "4", gotPriority)
	assert.Equal(t, "todo,home", gotTags)
	assert.Equal(t, "water the plants", gotBody)
}

func TestPublishOmitsEmptyHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasPriority := r.Header["Priority"]
		_, hasTags := r.Header["Tags"]
		assert.False(t, hasPriority)
		assert.False(t, hasTags)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.Publish(context.Background(), Message{Topic: "x", Body: "hi"}))
}

func TestPublishFailsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Publish(context.Background(), Message{Topic: "x", Body: "hi"})
	assert.Error(t, err)
}

func TestPublishFailsOnTransportError(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	err := c.Publish(context.Background(), Message{Topic: "x", Body: "hi"})
	assert.Error(t, err)
}
