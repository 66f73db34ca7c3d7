package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pdf-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendsKeyAndReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Page 2 says hello."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "gpt-4o-mini", 5*time.Second)
	answer, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, llm.WithAPIKey("sk-test"))

	require.NoError(t, err)
	assert.Equal(t, "Page 2 says hello.", answer)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
}

func TestChat_PropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", 5*time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, llm.WithAPIKey("bad"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestChat_RequiresKey(t *testing.T) {
	p := NewOpenAIProvider("http://unused", "", time.Second)

	_, err := p.Chat(context.Background(), nil)

	assert.Error(t, err)
}
