package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/highlog/interviewer/internal/topics"
)

// StartParams opens a new session. Answer is the candidate's reply to the
// opening question.
type StartParams struct {
	UserID       string
	RecordID     string
	Difficulty   Difficulty
	Answer       string
	ResponseTime int
}

// TurnResult is what the caller shows the candidate after a turn.
type TurnResult struct {
	SessionID     string
	Question      string
	Action        TurnAction
	Topic         topics.Topic
	Stage         Stage
	RemainingTime int
	Finished      bool
	Analysis      *AnswerAnalysis
}

// Controller drives sessions through their turns.
type Controller struct {
	store     Store
	engine    Engine
	retriever Retriever
	picker    topics.Picker
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	newID     func(recordID string) string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPicker sets how the next topic is chosen. Defaults to uniform random.
func WithPicker(p topics.Picker) Option {
	return func(c *Controller) { c.picker = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDFunc sets the session id generator.
func WithIDFunc(fn func(recordID string) string) Option {
	return func(c *Controller) { c.newID = fn }
}

// NewController creates a controller. retriever may be nil, in which case
// questions are generated without record evidence.
func NewController(store Store, engine Engine, retriever Retriever, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		engine:    engine,
		retriever: retriever,
		picker:    topics.RandomPicker{},
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
		newID:     NewSessionID,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewSessionID returns an id of the form interview_<record>_<8 hex>.
func NewSessionID(recordID string) string {
	return fmt.Sprintf("interview_%s_%s", recordID, uuid.NewString()[:8])
}

// Start creates a session and processes the answer to the opening
// question. On ErrTransient the session exists and the returned id can be
// used to resubmit the same answer with ProcessTurn.
func (c *Controller) Start(ctx context.Context, p StartParams) (*TurnResult, error) {
	if p.UserID == "" || p.RecordID == "" {
		return nil, fmt.Errorf("%w: user and record ids are required", ErrInvalidInput)
	}
	if p.ResponseTime < 0 {
		return nil, fmt.Errorf("%w: negative response time", ErrInvalidInput)
	}
	d := Normal
	if p.Difficulty != "" {
		var err error
		if d, err = ParseDifficulty(string(p.Difficulty)); err != nil {
			return nil, err
		}
	}

	now := c.now()
	s := &Session{
		ID:            c.newID(p.RecordID),
		UserID:        p.UserID,
		RecordID:      p.RecordID,
		Difficulty:    d,
		Stage:         StageIntro,
		Status:        StatusInProgress,
		TimeBudget:    c.cfg.TimeBudget,
		RemainingTime: c.cfg.TimeBudget,
		AskedTopics:   []topics.Topic{},
		LastQuestion:  c.cfg.OpeningQuestion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.logger.InfoContext(ctx, "session started",
		"session_id", s.ID, "record_id", s.RecordID, "difficulty", s.Difficulty)

	res, err := c.ProcessTurn(ctx, s.ID, p.Answer, p.ResponseTime)
	if err != nil {
		return &TurnResult{SessionID: s.ID, Question: s.LastQuestion, Stage: s.Stage, RemainingTime: s.RemainingTime}, err
	}
	return res, nil
}

// ProcessTurn records the answer to the pending question and produces the
// next question, or the closing message when the session ends.
func (c *Controller) ProcessTurn(ctx context.Context, id, answer string, responseTime int) (*TurnResult, error) {
	if responseTime < 0 {
		return nil, fmt.Errorf("%w: negative response time", ErrInvalidInput)
	}
	s, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return nil, ErrSessionFinished
	}

	action := forcedAction(s, responseTime, c.cfg)
	var evidence []Passage
	if action == nil {
		evidence = c.retrieve(ctx, s.RecordID, s.CurrentTopic)
		action, err = c.engine.Decide(ctx, DecisionInput{
			SessionID:     s.ID,
			Difficulty:    s.Difficulty,
			Topic:         s.CurrentTopic,
			RemainingTime: max(s.RemainingTime-responseTime, 0),
			Question:      s.LastQuestion,
			Answer:        answer,
			ResponseTime:  responseTime,
			Evidence:      evidence,
		})
		if err != nil {
			if abort := c.abortTurn(ctx, s, err); abort != nil {
				return nil, abort
			}
			action = EndSession{Reason: ReasonEngineError}
		}
	}

	now := c.now()
	base, entry := answered(s, answer, responseTime, now)
	next, action, err := c.execute(ctx, s, base, action, answer, evidence, now)
	if err != nil {
		return nil, err
	}

	var analysis *AnswerAnalysis
	if c.cfg.LiveAnalysis {
		analysis = c.evaluate(ctx, s, answer, responseTime, evidence)
	}

	next.Turn = s.Turn + 1
	if err := c.store.SaveTurn(ctx, s.Turn, &next, &entry); err != nil {
		return nil, fmt.Errorf("save turn: %w", err)
	}

	c.logger.InfoContext(ctx, "turn processed",
		"session_id", s.ID,
		"action", ActionName(action),
		"topic", next.CurrentTopic,
		"remaining", next.RemainingTime,
		"seq", entry.Seq)

	return &TurnResult{
		SessionID:     next.ID,
		Question:      next.LastQuestion,
		Action:        action,
		Topic:         next.CurrentTopic,
		Stage:         next.Stage,
		RemainingTime: next.RemainingTime,
		Finished:      next.Finished(),
		Analysis:      analysis,
	}, nil
}

// execute generates the next question for action and applies the matching
// transition. Generation failures other than transient ones end the session.
// It returns the action actually applied.
func (c *Controller) execute(ctx context.Context, prev *Session, base Session, action TurnAction, answer string, evidence []Passage, now time.Time) (Session, TurnAction, error) {
	switch a := action.(type) {
	case SwitchTopic:
		resolved := resolveSwitch(&base, c.picker)
		sw, ok := resolved.(SwitchTopic)
		if !ok {
			end := resolved.(EndSession)
			return applyEnd(base, end, now), end, nil
		}
		q, err := c.engine.OpeningQuestion(ctx, OpeningInput{
			SessionID:  base.ID,
			Difficulty: base.Difficulty,
			Topic:      sw.Topic,
			Evidence:   c.retrieve(ctx, base.RecordID, sw.Topic),
		})
		if err != nil {
			return c.failTurn(ctx, prev, base, err, now)
		}
		return applySwitch(base, sw, q), sw, nil

	case ProbeDeeper:
		q, err := c.engine.FollowUp(ctx, FollowUpInput{
			SessionID:  base.ID,
			Difficulty: base.Difficulty,
			Topic:      base.CurrentTopic,
			Question:   prev.LastQuestion,
			Answer:     answer,
			Evidence:   evidence,
			ProbeIndex: base.ProbeCount + 1,
		})
		if err != nil {
			return c.failTurn(ctx, prev, base, err, now)
		}
		return applyProbe(base, q), a, nil

	case EndSession:
		return applyEnd(base, a, now), a, nil
	}
	return Session{}, nil, fmt.Errorf("%w: unsupported action %T", ErrEngine, action)
}

func (c *Controller) failTurn(ctx context.Context, prev *Session, base Session, err error, now time.Time) (Session, TurnAction, error) {
	if abort := c.abortTurn(ctx, prev, err); abort != nil {
		return Session{}, nil, abort
	}
	end := EndSession{Reason: ReasonEngineError}
	return applyEnd(base, end, now), end, nil
}

// abortTurn returns a non-nil error when the turn must be abandoned without
// persisting anything: transient engine limits and caller cancellation.
// Other engine errors are logged and nil is returned so the session ends.
func (c *Controller) abortTurn(ctx context.Context, s *Session, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrTransient) {
		c.logger.WarnContext(ctx, "decision engine unavailable, turn not applied",
			"session_id", s.ID, "error", err)
		return err
	}
	c.logger.ErrorContext(ctx, "decision engine failed, ending session",
		"session_id", s.ID, "error", err)
	return nil
}

func (c *Controller) retrieve(ctx context.Context, recordID string, t topics.Topic) []Passage {
	if c.retriever == nil || t == "" {
		return nil
	}
	passages, err := c.retriever.Retrieve(ctx, recordID, t)
	if err != nil {
		c.logger.WarnContext(ctx, "evidence retrieval failed",
			"record_id", recordID, "topic", t, "error", err)
		return nil
	}
	return passages
}

func (c *Controller) evaluate(ctx context.Context, s *Session, answer string, responseTime int, evidence []Passage) *AnswerAnalysis {
	a, err := c.engine.EvaluateAnswer(ctx, DecisionInput{
		SessionID:     s.ID,
		Difficulty:    s.Difficulty,
		Topic:         s.CurrentTopic,
		RemainingTime: max(s.RemainingTime-responseTime, 0),
		Question:      s.LastQuestion,
		Answer:        answer,
		ResponseTime:  responseTime,
		Evidence:      evidence,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "live analysis failed", "session_id", s.ID, "error", err)
		return nil
	}
	return a
}

// Abandon marks an in-progress session as abandoned.
func (c *Controller) Abandon(ctx context.Context, id string) (*Session, error) {
	s, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, ErrSessionFinished
	}
	st := ComputeStats(s.Log, s.TimeBudget, s.RemainingTime)
	if err := c.store.UpdateStatus(ctx, id, StatusAbandoned, st); err != nil {
		return nil, fmt.Errorf("abandon session: %w", err)
	}
	c.logger.InfoContext(ctx, "session abandoned", "session_id", id)
	return c.store.Load(ctx, id)
}

// OpeningQuestion is the question a new session starts with.
func (c *Controller) OpeningQuestion() string { return c.cfg.OpeningQuestion }

// Session returns the stored session.
func (c *Controller) Session(ctx context.Context, id string) (*Session, error) {
	return c.store.Load(ctx, id)
}
