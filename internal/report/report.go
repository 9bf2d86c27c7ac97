// Package report turns a finished interview into a scored evaluation.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/topics"
)

// MaxAnswerRunes bounds how much of a single answer reaches the analyzer.
const MaxAnswerRunes = 500

// Turn is one question/answer pair of the transcript.
type Turn struct {
	Question     string
	Answer       string
	ResponseTime int
	Topic        topics.Topic
}

// AnalysisInput is everything the analyzer sees.
type AnalysisInput struct {
	SessionID  string
	Difficulty interview.Difficulty
	Transcript []Turn
	Stats      interview.SummaryStats
}

// Analysis is the raw analyzer output before validation.
type Analysis struct {
	Scores       interview.Scores
	StrengthTags []string
	WeaknessTags []string
	Breakdown    []interview.QuestionReview
}

// Analyzer scores a transcript.
type Analyzer interface {
	GenerateReport(ctx context.Context, in AnalysisInput) (*Analysis, error)
}

// Generator builds and attaches reports.
type Generator struct {
	store    interview.Store
	analyzer Analyzer
	logger   *slog.Logger
	now      func() time.Time
}

// NewGenerator creates a Generator. A nil logger discards output.
func NewGenerator(store interview.Store, analyzer Analyzer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{store: store, analyzer: analyzer, logger: logger, now: time.Now}
}

// Generate returns the session's report, producing it on first request.
// The session must be terminal and have at least one logged answer.
func (g *Generator) Generate(ctx context.Context, id string) (*interview.Report, error) {
	s, err := g.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Report != nil {
		return s.Report, nil
	}
	if !s.Status.Terminal() {
		return nil, interview.ErrNotReady
	}
	if len(s.Log) == 0 {
		return nil, interview.ErrNoData
	}

	stats := interview.ComputeStats(s.Log, s.TimeBudget, s.RemainingTime)
	in := AnalysisInput{
		SessionID:  s.ID,
		Difficulty: s.Difficulty,
		Transcript: Transcript(s.Log),
		Stats:      stats,
	}

	start := time.Now()
	a, err := g.analyzer.GenerateReport(ctx, in)
	if err != nil {
		g.logger.ErrorContext(ctx, "report analysis failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", interview.ErrAnalysis, err)
	}
	if err := Validate(a); err != nil {
		g.logger.ErrorContext(ctx, "report analysis rejected", "session_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", interview.ErrAnalysis, err)
	}

	rep := assemble(a, s.Log, stats, g.now())
	if err := g.store.AttachReport(ctx, id, rep); err != nil {
		if errors.Is(err, interview.ErrReportExists) {
			// Lost a race with a concurrent request; serve the stored one.
			s, lerr := g.store.Load(ctx, id)
			if lerr != nil {
				return nil, lerr
			}
			return s.Report, nil
		}
		return nil, fmt.Errorf("attach report: %w", err)
	}

	g.logger.InfoContext(ctx, "report generated",
		"session_id", id,
		"total", rep.Scores.Total,
		"questions", stats.QuestionCount,
		"duration", time.Since(start))
	return rep, nil
}

// Transcript converts the log into analyzer turns, truncating long answers.
func Transcript(log []interview.LogEntry) []Turn {
	out := make([]Turn, len(log))
	for i, e := range log {
		out[i] = Turn{
			Question:     e.Question,
			Answer:       truncate(e.Answer, MaxAnswerRunes),
			ResponseTime: e.ResponseTime,
			Topic:        e.Topic,
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "... (omitted)"
}

// assemble aligns the breakdown with the log: the question text and
// response time always come from the log, not the analyzer.
func assemble(a *Analysis, log []interview.LogEntry, stats interview.SummaryStats, now time.Time) *interview.Report {
	breakdown := make([]interview.QuestionReview, len(log))
	for i, e := range log {
		r := interview.QuestionReview{Rating: interview.RatingAverage}
		if i < len(a.Breakdown) {
			r = a.Breakdown[i]
		}
		r.Question = e.Question
		r.ResponseTime = e.ResponseTime
		breakdown[i] = r
	}

	scores := a.Scores
	scores.Total = scores.Sum()

	return &interview.Report{
		Scores:       scores,
		StrengthTags: nonNil(a.StrengthTags),
		WeaknessTags: nonNil(a.WeaknessTags),
		Breakdown:    breakdown,
		Stats:        stats,
		GeneratedAt:  now.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
