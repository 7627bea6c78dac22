package http

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, NewClient(time.Second).GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "OK", out.Status)
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(time.Second).GetJSON(context.Background(), srv.URL, &struct{}{})

	var statusErr *StatusError
	require.True(t, stderrors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "quota")
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	err := NewClient(time.Second).GetJSON(context.Background(), srv.URL, &struct{}{})
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestWithRateLimit_WaitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second).WithRateLimit(0.001, 1)
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &struct{}{}))

	// the single token is spent; the next wait cannot finish before the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.GetJSON(ctx, srv.URL, &struct{}{})
	assert.ErrorContains(t, err, "rate limiter")
}

func TestWithRateLimit_Disabled(t *testing.T) {
	c := NewClient(time.Second).WithRateLimit(0, 5)
	assert.Nil(t, c.limiter)
}
