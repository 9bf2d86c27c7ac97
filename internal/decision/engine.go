// Package decision is the LLM-backed decision engine: it picks the next
// interview action, writes questions, and scores finished interviews.
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/report"
)

// Engine implements interview.Engine and report.Analyzer.
type Engine struct {
	provider llm.Provider
	config   Config
}

var (
	_ interview.Engine = (*Engine)(nil)
	_ report.Analyzer  = (*Engine)(nil)
)

// New creates an Engine.
func New(provider llm.Provider, cfg Config) *Engine {
	return &Engine{provider: provider, config: cfg}
}

type nextActionOutput struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type questionOutput struct {
	Question string `json:"question"`
}

type analysisOutput struct {
	Score      int      `json:"score"`
	Rating     string   `json:"rating"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type reportOutput struct {
	Scores struct {
		MajorFit        int `json:"major_fit"`
		Character       int `json:"character"`
		GrowthPotential int `json:"growth_potential"`
		Communication   int `json:"communication"`
	} `json:"scores"`
	StrengthTags []string `json:"strength_tags"`
	WeaknessTags []string `json:"weakness_tags"`
	Detailed     []struct {
		Question         string `json:"question"`
		Evaluation       string `json:"evaluation"`
		ImprovementPoint string `json:"improvement_point"`
		SupplementNeeded string `json:"supplement_needed"`
	} `json:"detailed_analysis"`
}

// Decide chooses the next action for the turn.
func (e *Engine) Decide(ctx context.Context, in interview.DecisionInput) (interview.TurnAction, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "decide"), in.SessionID)

	var out nextActionOutput
	err := e.generate(ctx, llm.Request{
		System:      decideSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildDecideMessage(in)}},
		Schema:      NextActionSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: DecisionTemperature,
	}, &out)
	if err != nil {
		return nil, err
	}
	return interview.ParseVerdict(out.Action)
}

// OpeningQuestion writes the first question on a topic.
func (e *Engine) OpeningQuestion(ctx context.Context, in interview.OpeningInput) (string, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "opening-question"), in.SessionID)
	return e.question(ctx, openingSystemPrompt, buildOpeningMessage(in, e.config))
}

// FollowUp writes a probing question on the current topic.
func (e *Engine) FollowUp(ctx context.Context, in interview.FollowUpInput) (string, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "follow-up"), in.SessionID)
	return e.question(ctx, followUpSystemPrompt, buildFollowUpMessage(in, e.config))
}

func (e *Engine) question(ctx context.Context, system, msg string) (string, error) {
	var out questionOutput
	err := e.generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      QuestionSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}, &out)
	if err != nil {
		return "", err
	}
	q := strings.TrimSpace(out.Question)
	if q == "" {
		return "", fmt.Errorf("%w: empty question", interview.ErrEngine)
	}
	return q, nil
}

// EvaluateAnswer scores a single answer.
func (e *Engine) EvaluateAnswer(ctx context.Context, in interview.DecisionInput) (*interview.AnswerAnalysis, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "evaluate"), in.SessionID)

	var out analysisOutput
	err := e.generate(ctx, llm.Request{
		System:      analysisSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildDecideMessage(in)}},
		Schema:      AnswerAnalysisSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: DecisionTemperature,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &interview.AnswerAnalysis{
		Score:      out.Score,
		Rating:     interview.Rating(out.Rating),
		Strengths:  out.Strengths,
		Weaknesses: out.Weaknesses,
	}, nil
}

// GenerateReport scores a finished interview.
func (e *Engine) GenerateReport(ctx context.Context, in report.AnalysisInput) (*report.Analysis, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "report"), in.SessionID)

	var out reportOutput
	err := e.generate(ctx, llm.Request{
		System:      reportSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildReportMessage(in)}},
		Schema:      ReportSchema,
		MaxTokens:   e.config.ReportMaxTokens,
		Temperature: DecisionTemperature,
	}, &out)
	if err != nil {
		return nil, err
	}

	a := &report.Analysis{
		Scores: interview.Scores{
			MajorFit:        out.Scores.MajorFit,
			Character:       out.Scores.Character,
			GrowthPotential: out.Scores.GrowthPotential,
			Communication:   out.Scores.Communication,
		},
		StrengthTags: out.StrengthTags,
		WeaknessTags: out.WeaknessTags,
	}
	for _, d := range out.Detailed {
		a.Breakdown = append(a.Breakdown, interview.QuestionReview{
			Question:         d.Question,
			Rating:           interview.Rating(d.Evaluation),
			ImprovementPoint: d.ImprovementPoint,
			SupplementNeeded: d.SupplementNeeded,
		})
	}
	return a, nil
}

// generate runs req and decodes the validated JSON into out. Errors are
// classified for the interview controller.
func (e *Engine) generate(ctx context.Context, req llm.Request, out any) error {
	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return classify(err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("%w: failed to parse LLM response: %w", interview.ErrEngine, err)
	}
	return nil
}

func classify(err error) error {
	if llm.IsQuota(err) {
		return fmt.Errorf("%w: %w", interview.ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", interview.ErrEngine, err)
}
