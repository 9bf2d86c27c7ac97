package llm

import "context"

// EmbedKind tells the provider how the text will be used.
type EmbedKind string

const (
	EmbedQuery    EmbedKind = "query"
	EmbedDocument EmbedKind = "document"
)

// Embedder turns text into dense vectors for passage retrieval.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string, kind EmbedKind) ([][]float32, error)

	// EmbedModelID returns the embedding model identifier.
	EmbedModelID() string
}
