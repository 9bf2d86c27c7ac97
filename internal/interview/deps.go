package interview

import (
	"context"

	"github.com/highlog/interviewer/internal/topics"
)

// Store persists sessions and their interaction logs.
//
// Load must observe every prior write for the same id and fails with
// ErrNotFound for unknown ids. Log appends must never lose entries, even
// with concurrent writers.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	AppendLogEntry(ctx context.Context, id string, e LogEntry) (LogEntry, error)
	UpdateStatus(ctx context.Context, id string, status Status, stats SummaryStats) error

	// SaveTurn writes the session snapshot and appends entry (when non-nil)
	// in one transaction, provided the stored turn still equals prevTurn.
	// Otherwise it returns ErrConflict and writes nothing.
	SaveTurn(ctx context.Context, prevTurn int, s *Session, entry *LogEntry) error

	// AttachReport stores the report and marks the session COMPLETED with
	// the report's stats in one write. It fails with ErrReportExists when a
	// report is already attached.
	AttachReport(ctx context.Context, id string, r *Report) error
}

// Retriever returns record passages relevant to a topic, best first.
// An empty result is valid.
type Retriever interface {
	Retrieve(ctx context.Context, recordID string, topic topics.Topic) ([]Passage, error)
}

// DecisionInput is what the engine sees when choosing the next action.
type DecisionInput struct {
	SessionID     string
	Difficulty    Difficulty
	Topic         topics.Topic
	RemainingTime int
	Question      string
	Answer        string
	ResponseTime  int
	Evidence      []Passage
}

// OpeningInput asks for the first question on a new topic.
type OpeningInput struct {
	SessionID  string
	Difficulty Difficulty
	Topic      topics.Topic
	Evidence   []Passage
}

// FollowUpInput asks for a probing question on the current topic.
type FollowUpInput struct {
	SessionID  string
	Difficulty Difficulty
	Topic      topics.Topic
	Question   string
	Answer     string
	Evidence   []Passage
	ProbeIndex int
}

// Engine is the structured-inference collaborator.
//
// Errors caused by rate or quota limits must wrap ErrTransient. Any other
// failure, including output outside the expected shape, should wrap
// ErrEngine.
type Engine interface {
	Decide(ctx context.Context, in DecisionInput) (TurnAction, error)
	OpeningQuestion(ctx context.Context, in OpeningInput) (string, error)
	FollowUp(ctx context.Context, in FollowUpInput) (string, error)
	EvaluateAnswer(ctx context.Context, in DecisionInput) (*AnswerAnalysis, error)
}
