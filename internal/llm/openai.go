package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIProvider implements Provider and Embedder on the OpenAI API, or on
// any compatible endpoint set through BaseURL.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	embedModel string
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	embedModel := cfg.EmbeddingModel
	if embedModel == "" {
		embedModel = string(openai.SmallEmbedding3)
	}
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(oc),
		model:      resolveModel(cfg.Model, openaiModels),
		embedModel: embedModel,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		format, err := openAIResponseFormat(req.Schema)
		if err != nil {
			return nil, err
		}
		chatReq.ResponseFormat = format
		if format.Type == openai.ChatCompletionResponseFormatTypeJSONObject {
			// JSON mode is rejected unless the prompt mentions JSON.
			hint, err := schemaHint(req.Schema)
			if err != nil {
				return nil, err
			}
			req.System = strings.TrimSpace(req.System + "\n\n" + hint)
		}
	}
	chatReq.Messages = buildOpenAIMessages(req)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("openai reply has no choices")}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Message.Content)
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if choice.Message.Refusal != "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("model refused: %s", choice.Message.Refusal)}
	}
	content, err = decodeStructured(req.Schema, content)
	if err != nil {
		return nil, err
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: normalizeStop(string(choice.FinishReason), string(openai.FinishReasonLength)),
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// openAIResponseFormat asks for strict JSON-schema output when the schema
// satisfies strict mode's rules, and for plain JSON mode otherwise. Either
// way decodeStructured validates the reply.
func openAIResponseFormat(s *Schema) (*openai.ChatCompletionResponseFormat, error) {
	if !strictCompatible(s.Definition) {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}, nil
	}
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        s.Name,
			Description: s.Description,
			Schema:      json.RawMessage(b),
			Strict:      true,
		},
	}, nil
}

func schemaHint(s *Schema) (string, error) {
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return "", fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	return "Reply with a single JSON object that conforms to this JSON Schema:\n" + string(b), nil
}

// strictCompatible reports whether every object in def closes its
// properties and requires all of them, which strict mode demands. Range
// keywords are also rejected there.
func strictCompatible(def map[string]any) bool {
	if _, ok := def["minimum"]; ok {
		return false
	}
	if _, ok := def["maximum"]; ok {
		return false
	}
	if items, ok := def["items"].(map[string]any); ok && !strictCompatible(items) {
		return false
	}
	props, ok := def["properties"].(map[string]any)
	if !ok {
		return true
	}
	if def["additionalProperties"] != false {
		return false
	}
	required := stringsOf(def["required"])
	for name, p := range props {
		if !slices.Contains(required, name) {
			return false
		}
		if pd, ok := p.(map[string]any); ok && !strictCompatible(pd) {
			return false
		}
	}
	return true
}

// Embed embeds texts with the configured embedding model. OpenAI
// embeddings are symmetric, so kind is ignored.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string, _ EmbedKind) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.embedModel),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("asked for %d embeddings, got %d", len(texts), len(resp.Data))}
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, &ErrInvalidResponse{Err: fmt.Errorf("bad embedding index %d", d.Index)}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (p *OpenAIProvider) EmbedModelID() string {
	return p.embedModel
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == "insufficient_quota" || apiErr.Code == "insufficient_quota" {
			return &ErrRateLimit{Err: err}
		}
		return &ErrProviderUnavailable{Err: err}
	}
	// Proxies in front of compatible APIs answer with non-JSON bodies.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
