// Package evidence chunks student records and retrieves the passages that
// ground interview questions on a topic.
package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/store"
	"github.com/highlog/interviewer/internal/topics"
)

// Retriever ranks a record's stored chunks against a topic. It implements
// interview.Retriever.
type Retriever struct {
	chunks   store.ChunkRepo
	embedder llm.Embedder // nil means category lookup only
	cache    *lru.Cache[string, []float32]
	k        int
	logger   *slog.Logger
}

var _ interview.Retriever = (*Retriever)(nil)

// NewRetriever creates a Retriever. embedder may be nil.
func NewRetriever(chunks store.ChunkRepo, embedder llm.Embedder, cfg Config, logger *slog.Logger) (*Retriever, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg = cfg.withDefaults()
	cache, err := lru.New[string, []float32](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return &Retriever{
		chunks:   chunks,
		embedder: embedder,
		cache:    cache,
		k:        cfg.K,
		logger:   logger,
	}, nil
}

// Retrieve returns up to k passages for topic, best first. It falls back to
// the topic's category in record order when similarity ranking is not
// possible: no embedder, no chunk embedded by the current embedding model,
// or a failed query embedding.
func (r *Retriever) Retrieve(ctx context.Context, recordID string, topic topics.Topic) ([]interview.Passage, error) {
	if r.embedder != nil {
		all, err := r.chunks.Chunks(ctx, recordID)
		if err != nil {
			return nil, err
		}
		model := r.embedder.EmbedModelID()
		if candidates := embeddedWith(all, model); len(candidates) > 0 {
			q, err := r.queryVector(ctx, topic.Query())
			switch {
			case err == nil:
				if ranked := r.rank(candidates, q); len(ranked) > 0 {
					return ranked, nil
				}
				r.logger.Warn("stored embeddings do not match the query dimension, using category lookup",
					"record_id", recordID, "model", model, "dim", len(q))
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				r.logger.Warn("query embedding failed, using category lookup",
					"record_id", recordID, "topic", topic, "error", err)
			}
		} else if hasEmbeddings(all) {
			r.logger.Warn("record embedded with another model, using category lookup",
				"record_id", recordID, "model", model)
		}
	}
	return r.byCategory(ctx, recordID, topic.Category())
}

func (r *Retriever) queryVector(ctx context.Context, query string) ([]float32, error) {
	key := r.embedder.EmbedModelID() + "\x00" + query
	if v, ok := r.cache.Get(key); ok {
		return v, nil
	}
	vecs, err := r.embedder.Embed(llm.WithPurpose(ctx, "embed"), []string{query}, llm.EmbedQuery)
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}
	r.cache.Add(key, vecs[0])
	return vecs[0], nil
}

func (r *Retriever) rank(chunks []store.Chunk, q []float32) []interview.Passage {
	scored := make([]interview.Passage, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != len(q) {
			continue
		}
		scored = append(scored, interview.Passage{
			Text:     c.Text,
			Category: c.Category,
			Score:    cosine(q, c.Embedding),
		})
	}
	// Stable keeps record order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > r.k {
		scored = scored[:r.k]
	}
	return scored
}

func (r *Retriever) byCategory(ctx context.Context, recordID string, cat topics.Category) ([]interview.Passage, error) {
	chunks, err := r.chunks.ChunksByCategory(ctx, recordID, cat)
	if err != nil {
		return nil, err
	}
	if len(chunks) > r.k {
		chunks = chunks[:r.k]
	}
	out := make([]interview.Passage, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, interview.Passage{Text: c.Text, Category: c.Category})
	}
	return out, nil
}

func hasEmbeddings(chunks []store.Chunk) bool {
	for _, c := range chunks {
		if len(c.Embedding) > 0 {
			return true
		}
	}
	return false
}

// embeddedWith returns the chunks whose embedding came from model. Vectors
// from different models are not comparable even at equal dimension.
func embeddedWith(chunks []store.Chunk, model string) []store.Chunk {
	var out []store.Chunk
	for _, c := range chunks {
		if len(c.Embedding) > 0 && c.EmbedModel == model {
			out = append(out, c)
		}
	}
	return out
}
