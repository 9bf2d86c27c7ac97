package interview

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/highlog/interviewer/internal/topics"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	saveErr  error
	saves    int
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*Session)}
}

func (m *memStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("duplicate session %s", s.ID)
	}
	c := s.clone()
	m.sessions[s.ID] = &c
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := s.clone()
	return &c, nil
}

func (m *memStore) AppendLogEntry(_ context.Context, id string, e LogEntry) (LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return LogEntry{}, ErrNotFound
	}
	e.Seq = len(s.Log) + 1
	s.Log = append(s.Log, e)
	return e, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status Status, stats SummaryStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	s.Stats = &stats
	s.Turn++
	if status.Terminal() {
		s.Stage = StageWrapUp
	}
	if status == StatusAbandoned && s.EndReason == "" {
		s.EndReason = ReasonAbandoned
	}
	return nil
}

func (m *memStore) SaveTurn(_ context.Context, prevTurn int, s *Session, entry *LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cur, ok := m.sessions[s.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Turn != prevTurn {
		return ErrConflict
	}
	next := s.clone()
	next.Turn = prevTurn + 1
	next.Log = slices.Clone(cur.Log)
	if entry != nil {
		entry.Seq = len(cur.Log) + 1
		next.Log = append(next.Log, *entry)
	}
	m.sessions[s.ID] = &next
	m.saves++
	return nil
}

func (m *memStore) AttachReport(_ context.Context, id string, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Report != nil {
		return ErrReportExists
	}
	s.Report = r
	stats := r.Stats
	s.Stats = &stats
	s.Status = StatusCompleted
	s.Stage = StageWrapUp
	s.Turn++
	return nil
}

// scriptedEngine returns queued actions first, then def.
type scriptedEngine struct {
	mu      sync.Mutex
	queue   []TurnAction
	def     TurnAction
	analyze *AnswerAnalysis

	decideErr  error
	openingErr error
	followErr  error
	analyzeErr error

	decideCalls  int
	lastDecide   DecisionInput
	openingCalls int
	followCalls  int
	lastFollowUp FollowUpInput
	lastOpening  OpeningInput
}

func (e *scriptedEngine) Decide(_ context.Context, in DecisionInput) (TurnAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decideCalls++
	e.lastDecide = in
	if e.decideErr != nil {
		return nil, e.decideErr
	}
	if len(e.queue) > 0 {
		a := e.queue[0]
		e.queue = e.queue[1:]
		return a, nil
	}
	return e.def, nil
}

func (e *scriptedEngine) OpeningQuestion(_ context.Context, in OpeningInput) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.openingCalls++
	e.lastOpening = in
	if e.openingErr != nil {
		return "", e.openingErr
	}
	return "Tell me about " + in.Topic.Label(), nil
}

func (e *scriptedEngine) FollowUp(_ context.Context, in FollowUpInput) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.followCalls++
	e.lastFollowUp = in
	if e.followErr != nil {
		return "", e.followErr
	}
	return fmt.Sprintf("Probe %d on %s", in.ProbeIndex, in.Topic), nil
}

func (e *scriptedEngine) EvaluateAnswer(_ context.Context, _ DecisionInput) (*AnswerAnalysis, error) {
	if e.analyzeErr != nil {
		return nil, e.analyzeErr
	}
	return e.analyze, nil
}

type stubRetriever struct {
	passages []Passage
	err      error
	calls    []topics.Topic
}

func (r *stubRetriever) Retrieve(_ context.Context, _ string, t topics.Topic) ([]Passage, error) {
	r.calls = append(r.calls, t)
	return r.passages, r.err
}
