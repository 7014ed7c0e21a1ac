package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body responsesRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, "Ты администратор глэмпинга", body.Instructions)
		assert.Equal(t, "Здравствуйте", body.Input)
		assert.Equal(t, 300, body.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"status": "completed",
			"output": [
				{"type": "reasoning", "content": []},
				{"type": "message", "role": "assistant", "content": [
					{"type": "output_text", "text": "Добрый день! "},
					{"type": "output_text", "text": "Чем помочь?"}
				]}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/", "sk-test", "gpt-4o-mini", time.Second, logger.NewNop())

	text, err := c.Complete(context.Background(), "Ты администратор глэмпинга", "Здравствуйте", 300)
	require.NoError(t, err)
	assert.Equal(t, "Добрый день! Чем помочь?", text)
}

func TestComplete_NoAPIKey(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "gpt-4o-mini", time.Second, logger.NewNop())

	_, err := c.Complete(context.Background(), "", "hi", 10)
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}

func TestComplete_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrUnavailable},
		{name: "server error", status: http.StatusBadGateway, want: ErrUnavailable},
		{name: "bad request", status: http.StatusBadRequest, want: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "sk-test", "m", time.Second, logger.NewNop())
			_, err := c.Complete(context.Background(), "", "hi", 10)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "m", 50*time.Millisecond, logger.NewNop())
	_, err := c.Complete(context.Background(), "", "hi", 10)
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}

func TestComplete_EmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"resp_2","status":"incomplete","output":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "m", time.Second, logger.NewNop())
	_, err := c.Complete(context.Background(), "", "hi", 10)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
