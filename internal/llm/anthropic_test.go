package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicReply(w http.ResponseWriter, stop string, blocks ...string) {
	content := make([]map[string]any, len(blocks))
	for i, b := range blocks {
		content[i] = map[string]any{"type": "text", "text": b}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	})
}

func anthropicFailure(w http.ResponseWriter, status int, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": typ, "message": typ},
	})
}

func TestAnthropicGenerate(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		anthropicReply(w, "end_turn", `{"question":"동아리에서 맡은 역할을 `, `구체적으로 설명해 주세요."}`)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a university admissions interviewer.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate an opening question."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if want := `{"question":"동아리에서 맡은 역할을 구체적으로 설명해 주세요."}`; string(resp.Content) != want {
		t.Errorf("Content = %s, want the joined text blocks", resp.Content)
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != "end" {
		t.Errorf("usage/stop = %+v %q", resp.Usage, resp.StopReason)
	}
	if body["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("request model = %v, want the resolved id", body["model"])
	}
}

func TestAnthropicGenerateStructured(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "end_turn", "```json\n{\"action\":\"switch_topic\",\"reason\":\"충분히 답변함\"}\n```")
	})
	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "decide"}},
		Schema:    actionSchema("test-anthropic-decide"),
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"action":"switch_topic","reason":"충분히 답변함"}` {
		t.Errorf("Content = %s, want the unfenced object", resp.Content)
	}
}

func TestAnthropicGenerateMaxTokens(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "max_tokens", `{"question":"잘린`)
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 8})
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("err = %v, want *ErrMaxTokensExceeded", err)
	}
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		typ        string
		retryAfter string
		wantQuota  bool
		wantWait   time.Duration
	}{
		{name: "rate limit", status: http.StatusTooManyRequests, typ: "rate_limit_error", retryAfter: "7", wantQuota: true, wantWait: 7 * time.Second},
		{name: "overloaded", status: statusOverloaded, typ: "overloaded_error", wantQuota: true},
		{name: "server error", status: http.StatusInternalServerError, typ: "api_error"},
		{name: "bad request", status: http.StatusBadRequest, typ: "invalid_request_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				anthropicFailure(w, tt.status, tt.typ)
			})
			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 16})
			if got := IsQuota(err); got != tt.wantQuota {
				t.Fatalf("IsQuota(%v) = %v, want %v", err, got, tt.wantQuota)
			}
			if tt.wantQuota {
				var rl *ErrRateLimit
				errors.As(err, &rl)
				if rl.RetryAfter != tt.wantWait {
					t.Errorf("RetryAfter = %s, want %s", rl.RetryAfter, tt.wantWait)
				}
				return
			}
			var down *ErrProviderUnavailable
			if !errors.As(err, &down) {
				t.Errorf("err = %T, want *ErrProviderUnavailable", err)
			}
		})
	}
}

func TestRetryAfterHeader(t *testing.T) {
	h := http.Header{}
	if retryAfterHeader(h) != 0 {
		t.Error("absent header should be 0")
	}
	h.Set("Retry-After", "12")
	if got := retryAfterHeader(h); got != 12*time.Second {
		t.Errorf("seconds form = %s", got)
	}
	h.Set("Retry-After", "soon")
	if got := retryAfterHeader(h); got != 0 {
		t.Errorf("garbage = %s, want 0", got)
	}
	h.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	if got := retryAfterHeader(h); got != 0 {
		t.Errorf("past date = %s, want 0", got)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, anthropicModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
