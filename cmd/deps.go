package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/highlog/interviewer/internal/config"
	"github.com/highlog/interviewer/internal/decision"
	"github.com/highlog/interviewer/internal/evidence"
	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/report"
	"github.com/highlog/interviewer/internal/store"
	"github.com/spf13/cobra"
)

// deps is the wired object graph shared by the commands.
type deps struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	provider llm.Provider
	embedder llm.Embedder // nil when no embedding backend is available
}

// buildDeps loads config, opens the store and connects the LLM provider.
// The caller must call close.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
	if err != nil {
		st.Close()
		return nil, err
	}
	d := &deps{cfg: cfg, store: st, logger: logger, provider: provider}
	d.embedder, err = embedderFor(ctx, cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return d, nil
}

func embedderFor(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) (llm.Embedder, error) {
	e, err := llm.NewEmbedder(ctx, cfg.LLM, st.EventRepo())
	if errors.Is(err, llm.ErrNoEmbedder) {
		logger.Info("no embedding backend, evidence retrieval uses record categories", "provider", cfg.LLM.Provider)
		return nil, nil
	}
	return e, err
}

func (d *deps) close() { d.store.Close() }

func (d *deps) engine() *decision.Engine {
	return decision.New(d.provider, d.cfg.Decision)
}

func (d *deps) controller(opts ...interview.Option) (*interview.Controller, error) {
	r, err := evidence.NewRetriever(d.store.ChunkRepo(), d.embedder, d.cfg.Evidence, d.logger)
	if err != nil {
		return nil, err
	}
	opts = append([]interview.Option{interview.WithLogger(d.logger)}, opts...)
	return interview.NewController(d.store.Sessions(), d.engine(), r, d.cfg.Interview, opts...), nil
}

func (d *deps) reports() *report.Generator {
	return report.NewGenerator(d.store.Sessions(), d.engine(), d.logger)
}
