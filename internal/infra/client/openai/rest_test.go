package ai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	ai "github.com/Builder-Lawyers/orbiter-backend/internal/infra/client/openai"
	"github.com/stretchr/testify/require"
)

const completion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "{\"blocked\": true, \"reason\": \"imitates a bank login\"}"}
	}]
}`

func TestReviewParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_KEY", "test")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	cfg := ai.NewOpenAIConfig()
	require.True(t, cfg.Enabled())

	blocked, reason, err := ai.NewOpenAIClient(cfg).Review(context.Background(), "<form><input type=password></form>", []string{"login_form_present"})
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, "imitates a bank login", reason)
}

func TestDisabledWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_KEY", "")
	require.False(t, ai.NewOpenAIConfig().Enabled())
}
