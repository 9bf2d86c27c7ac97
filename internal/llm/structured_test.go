package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func actionSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type": "string",
					"enum": []string{"probe_deeper", "switch_topic", "end_session"},
				},
				"reason": map[string]any{"type": "string"},
				"score":  map[string]any{"type": "integer", "minimum": 0, "maximum": 25},
			},
			"required":             []string{"action"},
			"additionalProperties": false,
		},
	}
}

func TestDecodeStructured(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"action":"probe_deeper","reason":"답변이 모호함"}`,
			want: `{"action":"probe_deeper","reason":"답변이 모호함"}`,
		},
		{
			name: "markdown fence",
			raw:  "```json\n{\"action\":\"switch_topic\"}\n```",
			want: `{"action":"switch_topic"}`,
		},
		{
			name: "prose around object",
			raw:  "Here is my decision:\n{\"action\":\"end_session\"}\nGood luck.",
			want: `{"action":"end_session"}`,
		},
		{name: "unknown action", raw: `{"action":"repeat"}`, wantErr: true},
		{name: "missing action", raw: `{"reason":"x"}`, wantErr: true},
		{name: "extra field", raw: `{"action":"end_session","mood":"tired"}`, wantErr: true},
		{name: "score out of range", raw: `{"action":"end_session","score":40}`, wantErr: true},
		{name: "not json", raw: `probe deeper please`, wantErr: true},
		{name: "truncated", raw: `{"action":"probe_`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStructured(actionSchema("test-decide"), json.RawMessage(tt.raw))
			if tt.wantErr {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("err = %v, want *ErrInvalidResponse", err)
				}
				if string(inv.Content) != tt.raw {
					t.Errorf("Content = %q, want the raw model output", inv.Content)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeStructuredNilSchema(t *testing.T) {
	raw := json.RawMessage("free text answer")
	got, err := decodeStructured(nil, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("got %q, want raw passthrough", got)
	}
}

func TestCompileSchemaCachesByName(t *testing.T) {
	s := actionSchema("test-cache")
	first, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Error("second compile should return the cached validator")
	}
}

func TestCompileSchemaInvalidDefinition(t *testing.T) {
	s := &Schema{Name: "test-broken", Definition: map[string]any{"type": 12}}
	if _, err := compileSchema(s); err == nil {
		t.Fatal("expected compile error for a non-string type")
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct{ in, want string }{
		{`  {"a":1}  `, `{"a":1}`},
		{"```\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{`no braces`, `no braces`},
		{`} backwards {`, `} backwards {`},
	}
	for _, tt := range tests {
		if got := string(extractJSONObject([]byte(tt.in))); got != tt.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
