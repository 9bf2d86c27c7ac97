// Package interview runs the timed interview state machine: after each
// candidate answer it decides whether to probe deeper, switch to a new
// sub-topic, or end the session, and persists the turn.
package interview

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/highlog/interviewer/internal/topics"
)

// Difficulty is the interviewer's pressure level.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Normal Difficulty = "Normal"
	Hard   Difficulty = "Hard"
)

// ParseDifficulty accepts a difficulty name in any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range []Difficulty{Easy, Normal, Hard} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, s)
}

// Stage is the phase of the interview. Stages only move forward.
type Stage string

const (
	StageIntro  Stage = "INTRO"
	StageMain   Stage = "MAIN"
	StageWrapUp Stage = "WRAP_UP"
)

func (s Stage) rank() int {
	switch s {
	case StageIntro:
		return 0
	case StageMain:
		return 1
	case StageWrapUp:
		return 2
	}
	return -1
}

// Status is the lifecycle status of a session.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusAbandoned  Status = "ABANDONED"
)

// Terminal reports whether no further turns are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusAbandoned
}

// EndReason records why a session reached WRAP_UP.
type EndReason string

const (
	ReasonTimeExhausted   EndReason = "time_exhausted"
	ReasonTopicsExhausted EndReason = "topics_exhausted"
	ReasonEngineDecided   EndReason = "engine_decided"
	ReasonEngineError     EndReason = "engine_error"
	ReasonAbandoned       EndReason = "abandoned"
)

// Session is one interview attempt. Values are treated as immutable
// snapshots: transitions return modified copies.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	RecordID   string     `json:"record_id"`
	Difficulty Difficulty `json:"difficulty"`
	Stage      Stage      `json:"stage"`
	Status     Status     `json:"status"`
	EndReason  EndReason  `json:"end_reason,omitempty"`

	TimeBudget    int `json:"time_budget"`
	RemainingTime int `json:"remaining_time"`

	CurrentTopic topics.Topic   `json:"current_topic,omitempty"`
	AskedTopics  []topics.Topic `json:"asked_topics"`
	ProbeCount   int            `json:"probe_count"`

	// LastQuestion is the question awaiting an answer.
	LastQuestion string `json:"last_question,omitempty"`

	// Turn counts persisted turns and versions the row.
	Turn int `json:"turn"`

	Stats  *SummaryStats `json:"stats,omitempty"`
	Log    []LogEntry    `json:"log"`
	Report *Report       `json:"report,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Finished reports whether the session accepts no more answers.
func (s *Session) Finished() bool {
	return s.Status.Terminal() || s.Stage == StageWrapUp
}

// clone returns a copy that shares no slices with s.
func (s Session) clone() Session {
	s.AskedTopics = slices.Clone(s.AskedTopics)
	s.Log = slices.Clone(s.Log)
	if s.Stats != nil {
		st := *s.Stats
		s.Stats = &st
	}
	return s
}

// LogEntry is one question/answer exchange. Entries are append-only.
type LogEntry struct {
	Seq          int          `json:"seq"`
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	ResponseTime int          `json:"response_time"`
	Topic        topics.Topic `json:"sub_topic"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Passage is a retrieved snippet of record text grounding a question.
// Passages live only for the duration of a turn.
type Passage struct {
	Text     string          `json:"text"`
	Category topics.Category `json:"category"`
	Score    float64         `json:"score"`
}

// SummaryStats are aggregate numbers derived from the interaction log.
type SummaryStats struct {
	QuestionCount     int `json:"question_count"`
	AvgResponseTime   int `json:"avg_response_time"`
	TotalResponseTime int `json:"total_response_time"`
	ElapsedTime       int `json:"elapsed_time"`
}

// ComputeStats derives summary stats from the log. Elapsed time is the
// configured budget minus the time still remaining.
func ComputeStats(log []LogEntry, budget, remaining int) SummaryStats {
	st := SummaryStats{
		QuestionCount: len(log),
		ElapsedTime:   max(budget-remaining, 0),
	}
	for _, e := range log {
		st.TotalResponseTime += e.ResponseTime
	}
	if st.QuestionCount > 0 {
		st.AvgResponseTime = st.TotalResponseTime / st.QuestionCount
	}
	return st
}
