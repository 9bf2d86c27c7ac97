package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/store"
)

// ErrEmptyRecord is returned when a record yields no usable paragraphs.
var ErrEmptyRecord = fmt.Errorf("%w: record has no usable paragraphs", interview.ErrInvalidInput)

// Ingester turns record text into stored, embedded chunks.
type Ingester struct {
	chunks   store.ChunkRepo
	embedder llm.Embedder
	cfg      Config
	logger   *slog.Logger
}

func NewIngester(chunks store.ChunkRepo, embedder llm.Embedder, cfg Config, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingester{chunks: chunks, embedder: embedder, cfg: cfg.withDefaults(), logger: logger}
}

// Ingest chunks text, embeds every chunk and replaces the record's stored
// chunks. Without an embedder chunks are stored unembedded and retrieval
// uses category lookup. It returns the number of chunks stored.
func (in *Ingester) Ingest(ctx context.Context, recordID, text string) (int, error) {
	if recordID == "" {
		return 0, fmt.Errorf("%w: record id is required", interview.ErrInvalidInput)
	}
	drafts := Chunk(text)
	if len(drafts) == 0 {
		return 0, ErrEmptyRecord
	}

	chunks := make([]store.Chunk, len(drafts))
	for i, d := range drafts {
		chunks[i] = store.Chunk{RecordID: recordID, Index: d.Index, Category: d.Category, Text: d.Text}
	}

	if in.embedder != nil {
		if err := in.embed(ctx, chunks); err != nil {
			return 0, err
		}
	}

	if err := in.chunks.ReplaceChunks(ctx, recordID, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	in.logger.Info("record ingested", "record_id", recordID, "chunks", len(chunks), "embedded", in.embedder != nil)
	return len(chunks), nil
}

// embed fills Embedding on every chunk, batching texts and running at most
// cfg.Concurrency batches at once. Each goroutine writes a disjoint range.
func (in *Ingester) embed(ctx context.Context, chunks []store.Chunk) error {
	g, gctx := errgroup.WithContext(llm.WithPurpose(ctx, "embed"))
	g.SetLimit(in.cfg.Concurrency)

	model := in.embedder.EmbedModelID()
	for start := 0; start < len(chunks); start += in.cfg.BatchSize {
		end := min(start+in.cfg.BatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			vecs, err := in.embedder.Embed(gctx, texts, llm.EmbedDocument)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != len(texts) {
				return errors.New("embedder returned a different number of vectors than texts")
			}
			for i, v := range vecs {
				chunks[start+i].Embedding = v
				chunks[start+i].EmbedModel = model
			}
			return nil
		})
	}
	return g.Wait()
}
