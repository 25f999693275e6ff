package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Generate(t *testing.T) {
	var seen map[string]any
	srv := fakeChatServer(t, "  {\"name\": \"Finance\"}\n", &seen)

	c := NewOpenAIClient("k", "test-model", srv.URL, 256)
	out, err := c.Generate(context.Background(), "Name this cluster. Respond with JSON.")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Finance"}`, out)

	assert.Equal(t, "test-model", seen["model"])
	assert.EqualValues(t, 256, seen["max_tokens"])
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	var seen map[string]any
	srv := fakeChatServer(t, "   ", &seen)

	_, err := NewOpenAIClient("k", "", srv.URL, 0).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "empty completion")
}
