package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-flash-lite", "gemini-2.5-flash-lite"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"major_fit": map[string]any{"type": "integer", "minimum": 0, "maximum": 25},
				},
				"required": []string{"major_fit"},
			},
			"detailed_analysis": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"evaluation": map[string]any{"type": "string", "enum": []any{"good", "average", "poor"}},
					},
				},
			},
			"strength_tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"scores", "detailed_analysis"},
	}

	s := buildGeminiSchema(def)

	if s.Type != genai.TypeObject || len(s.Properties) != 3 || len(s.Required) != 2 {
		t.Fatalf("top level = %s with %d properties, %d required", s.Type, len(s.Properties), len(s.Required))
	}
	scores := s.Properties["scores"]
	if len(scores.Required) != 1 || scores.Required[0] != "major_fit" {
		t.Errorf("[]string required not carried: %v", scores.Required)
	}
	mf := scores.Properties["major_fit"]
	if mf.Type != genai.TypeInteger || mf.Minimum == nil || *mf.Minimum != 0 || mf.Maximum == nil || *mf.Maximum != 25 {
		t.Errorf("major_fit = %+v", mf)
	}
	items := s.Properties["detailed_analysis"].Items
	if items == nil || len(items.Properties["evaluation"].Enum) != 3 {
		t.Fatalf("evaluation enum not carried: %+v", items)
	}
	if s.Properties["strength_tags"].Items.Type != genai.TypeString {
		t.Errorf("strength_tags items = %s", s.Properties["strength_tags"].Items.Type)
	}
}

func TestMapGeminiError(t *testing.T) {
	quota := genai.APIError{
		Code:   http.StatusTooManyRequests,
		Status: "RESOURCE_EXHAUSTED",
		Details: []map[string]any{
			{"@type": "type.googleapis.com/google.rpc.QuotaFailure"},
			{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "17s"},
		},
	}
	err := mapGeminiError(&quota)
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("err = %T, want *ErrRateLimit", err)
	}
	if rl.RetryAfter != 17*time.Second {
		t.Errorf("RetryAfter = %s, want 17s", rl.RetryAfter)
	}

	down := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	var pu *ErrProviderUnavailable
	if !errors.As(mapGeminiError(&down), &pu) {
		t.Error("503 should map to ErrProviderUnavailable")
	}
	if !errors.As(mapGeminiError(errors.New("dial tcp: timeout")), &pu) {
		t.Error("transport errors should map to ErrProviderUnavailable")
	}
}

func TestGeminiRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		details []map[string]any
		want    time.Duration
	}{
		{"none", nil, 0},
		{"other detail", []map[string]any{{"@type": "type.googleapis.com/google.rpc.Help"}}, 0},
		{"fractional", []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "1.5s"}}, 1500 * time.Millisecond},
		{"unparsable", []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "soon"}}, 0},
	}
	for _, tt := range tests {
		if got := geminiRetryDelay(tt.details); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}
