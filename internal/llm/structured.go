package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds one validator per schema name. Schema names are
// stable per call site, so the first definition seen for a name wins.
var compiledSchemas = struct {
	sync.Mutex
	m map[string]*jsonschema.Schema
}{m: make(map[string]*jsonschema.Schema)}

// decodeStructured cleans a model's JSON answer and checks it against
// schema. Providers without native structured output tend to wrap the
// object in a markdown fence or a sentence of preamble; both are removed.
// A nil schema returns raw unchanged.
func decodeStructured(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}

	content := extractJSONObject(raw)
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: not JSON: %w", schema.Name, err)}
	}

	validator, err := compileSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := validator.Validate(doc); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %w", schema.Name, err)}
	}
	return content, nil
}

// extractJSONObject returns the outermost {...} of raw with any fence or
// surrounding prose dropped. Input without braces is returned trimmed so
// the caller reports the real parse error.
func extractJSONObject(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	start := bytes.IndexByte(s, '{')
	end := bytes.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	compiledSchemas.Lock()
	defer compiledSchemas.Unlock()

	if v, ok := compiledSchemas.m[schema.Name]; ok {
		return v, nil
	}

	// The compiler wants decoded JSON values, not Go maps with typed slices.
	b, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: marshal: %w", schema.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("schema %s: decode: %w", schema.Name, err)
	}

	url := "mem://interviewer/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: compile: %w", schema.Name, err)
	}
	compiledSchemas.m[schema.Name] = v
	return v, nil
}
