package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maraichr/catalograph/internal/config"
)

// fakeOpenAI serves /v1/chat/completions. reply decides the status and content
// for each call and may inspect the decoded request.
func fakeOpenAI(t *testing.T, reply func(call int, req map[string]any) (int, string)) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		n := int(calls.Add(1))
		status, content := reply(n, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": content, "type": "test_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  req["model"],
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1/", Model: "gpt-4"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = time.Millisecond
	return c, &calls
}

func TestComplete(t *testing.T) {
	c, _ := fakeOpenAI(t, func(_ int, req map[string]any) (int, string) {
		assert.Equal(t, "gpt-4", req["model"])
		msgs := req["messages"].([]any)
		assert.Len(t, msgs, 2)
		return http.StatusOK, "  hello  \n"
	})

	got, err := c.Complete(context.Background(), "sys", "prompt", 0.3, 100)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestComplete_RetriesThrottling(t *testing.T) {
	c, calls := fakeOpenAI(t, func(n int, _ map[string]any) (int, string) {
		if n < 3 {
			return http.StatusTooManyRequests, "slow down"
		}
		return http.StatusOK, "ok"
	})

	got, err := c.Complete(context.Background(), "sys", "prompt", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_GivesUpAfterRetries(t *testing.T) {
	c, calls := fakeOpenAI(t, func(int, map[string]any) (int, string) {
		return http.StatusServiceUnavailable, "overloaded"
	})

	_, err := c.Complete(context.Background(), "sys", "prompt", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.Equal(t, int32(maxRetries), calls.Load())
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	c, calls := fakeOpenAI(t, func(int, map[string]any) (int, string) {
		return http.StatusUnauthorized, "bad key"
	})

	_, err := c.Complete(context.Background(), "sys", "prompt", 0, 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTranslate(t *testing.T) {
	c, _ := fakeOpenAI(t, func(_ int, req map[string]any) (int, string) {
		msgs := req["messages"].([]any)
		user := msgs[1].(map[string]any)["content"].(string)
		assert.Contains(t, user, "CUSTOMER_MASTER: customer_id (VARCHAR(20))")
		assert.Contains(t, user, "Which tables feed FINAL_REPORT?")
		return http.StatusOK, "EXPLANATION: Finds upstream tables.\nCYPHER: MATCH (t:Table)-[:LOADS_INTO]->(:Table {name: 'FINAL_REPORT'}) RETURN t.name"
	})

	got, err := c.Translate(context.Background(), "Which tables feed FINAL_REPORT?", "CUSTOMER_MASTER: customer_id (VARCHAR(20))\n")
	require.NoError(t, err)
	assert.Equal(t, "Finds upstream tables.", got.Explanation)
	assert.Equal(t, "MATCH (t:Table)-[:LOADS_INTO]->(:Table {name: 'FINAL_REPORT'}) RETURN t.name", got.Cypher)
}

func TestTranslate_NoCypher(t *testing.T) {
	c, _ := fakeOpenAI(t, func(int, map[string]any) (int, string) {
		return http.StatusOK, "I cannot answer that."
	})

	_, err := c.Translate(context.Background(), "what is the weather", "")
	assert.Error(t, err)
}

func TestParseTranslation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Translation
	}{
		{
			name:    "markers",
			content: "EXPLANATION: Counts tables.\nCYPHER: MATCH (t:Table) RETURN count(t)",
			want:    Translation{Explanation: "Counts tables.", Cypher: "MATCH (t:Table) RETURN count(t)"},
		},
		{
			name:    "markers with fenced query",
			content: "EXPLANATION: Lists regions.\nCYPHER:\n```cypher\nMATCH (r:Region)\nRETURN r.name\n```",
			want:    Translation{Explanation: "Lists regions.", Cypher: "MATCH (r:Region)\nRETURN r.name"},
		},
		{
			name:    "fallback line scan",
			content: "Here you go:\n\nmatch (c:Client)\nRETURN c LIMIT 5",
			want:    Translation{Explanation: fallbackExplanation, Cypher: "match (c:Client)\nRETURN c LIMIT 5"},
		},
		{
			name:    "nothing recognizable",
			content: "Sorry.",
			want:    Translation{Explanation: fallbackExplanation},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *ParseTranslation(tt.content))
		})
	}
}

func TestSummarize(t *testing.T) {
	var sawRows bool
	c, calls := fakeOpenAI(t, func(_ int, req map[string]any) (int, string) {
		user := req["messages"].([]any)[1].(map[string]any)["content"].(string)
		sawRows = strings.Contains(user, "Total rows: 12")
		return http.StatusOK, "Twelve clients were found."
	})

	empty, err := c.Summarize(context.Background(), "q", "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Equal(t, NoResultsSummary, empty)
	assert.Equal(t, int32(0), calls.Load(), "empty results never reach the model")

	rows := make([]map[string]any, 12)
	for i := range rows {
		rows[i] = map[string]any{"i": i}
	}
	got, err := c.Summarize(context.Background(), "q", "MATCH (n) RETURN n", rows)
	require.NoError(t, err)
	assert.Equal(t, "Twelve clients were found.", got)
	assert.True(t, sawRows)
}

func TestToSQL_StripsFences(t *testing.T) {
	c, _ := fakeOpenAI(t, func(int, map[string]any) (int, string) {
		return http.StatusOK, "```sql\nSELECT count(*) FROM clients;\n```"
	})

	got, err := c.ToSQL(context.Background(), "MATCH (c:Client) RETURN count(c)", "how many clients")
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM clients;", got)
}
