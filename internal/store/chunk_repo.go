package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/highlog/interviewer/internal/topics"
)

type chunkRepo struct {
	db      *sql.DB
	dialect string
}

var chunkColumns = []string{"record_id", "idx", "category", "text", "embedding", "embed_model"}

func (r *chunkRepo) ReplaceChunks(ctx context.Context, recordID string, chunks []Chunk) error {
	b := entsql.Dialect(r.dialect)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		q, args := b.Delete(tableChunks).Where(entsql.EQ("record_id", recordID)).Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}

		now := time.Now().UTC()
		ins := b.Insert(tableChunks).Columns(append(chunkColumns, "created_at")...)
		for i, c := range chunks {
			var emb any
			if c.Embedding != nil {
				data, err := json.Marshal(c.Embedding)
				if err != nil {
					return fmt.Errorf("encode embedding %d: %w", i, err)
				}
				emb = string(data)
			}
			ins.Values(recordID, i, string(c.Category), c.Text, emb, c.EmbedModel, now)
		}
		q, args = ins.Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
}

func (r *chunkRepo) Chunks(ctx context.Context, recordID string) ([]Chunk, error) {
	return r.query(ctx, entsql.EQ("record_id", recordID))
}

func (r *chunkRepo) ChunksByCategory(ctx context.Context, recordID string, category topics.Category) ([]Chunk, error) {
	return r.query(ctx, entsql.And(
		entsql.EQ("record_id", recordID),
		entsql.EQ("category", string(category)),
	))
}

func (r *chunkRepo) query(ctx context.Context, where *entsql.Predicate) ([]Chunk, error) {
	b := entsql.Dialect(r.dialect)
	q, args := b.Select(chunkColumns...).
		From(b.Table(tableChunks)).
		Where(where).
		OrderBy(entsql.Asc("idx")).
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var (
			c        Chunk
			category string
			emb      []byte
		)
		if err := rows.Scan(&c.RecordID, &c.Index, &category, &c.Text, &emb, &c.EmbedModel); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Category = topics.Category(category)
		if len(emb) > 0 {
			if err := json.Unmarshal(emb, &c.Embedding); err != nil {
				return nil, fmt.Errorf("decode embedding: %w", err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
