package interview

import (
	"fmt"

	"github.com/highlog/interviewer/internal/topics"
)

// TurnAction is the outcome of deciding a turn. It is one of ProbeDeeper,
// SwitchTopic or EndSession.
type TurnAction interface {
	actionName() string
}

// ProbeDeeper asks a follow-up on the current topic.
type ProbeDeeper struct{}

// SwitchTopic moves to a new topic. Topic is empty until the controller
// picks one.
type SwitchTopic struct {
	Topic topics.Topic
}

// EndSession moves the session to WRAP_UP.
type EndSession struct {
	Reason EndReason
}

func (ProbeDeeper) actionName() string { return "probe_deeper" }
func (SwitchTopic) actionName() string { return "switch_topic" }
func (EndSession) actionName() string  { return "end_session" }

// ActionName returns a stable identifier for logging and API responses.
func ActionName(a TurnAction) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// ParseVerdict maps an engine verdict string to an action.
func ParseVerdict(v string) (TurnAction, error) {
	switch v {
	case "follow_up":
		return ProbeDeeper{}, nil
	case "new_topic":
		return SwitchTopic{}, nil
	case "wrap_up":
		return EndSession{Reason: ReasonEngineDecided}, nil
	}
	return nil, fmt.Errorf("%w: unknown verdict %q", ErrEngine, v)
}

// forcedAction applies the rules that take precedence over the engine, in
// order: not enough time left, the introduction always leads into the first
// topic, every topic already asked, probe cap reached. It returns nil when
// the engine should decide.
func forcedAction(s *Session, responseTime int, cfg Config) TurnAction {
	if s.RemainingTime-responseTime < cfg.MinRemaining {
		return EndSession{Reason: ReasonTimeExhausted}
	}
	if s.Stage == StageIntro {
		return SwitchTopic{}
	}
	if len(topics.Remaining(s.AskedTopics)) == 0 {
		return EndSession{Reason: ReasonTopicsExhausted}
	}
	if s.ProbeCount >= cfg.MaxProbesPerTopic {
		return SwitchTopic{}
	}
	return nil
}

// resolveSwitch picks the next topic for a SwitchTopic action, or ends the
// session when nothing is left.
func resolveSwitch(s *Session, p topics.Picker) TurnAction {
	remaining := topics.Remaining(s.AskedTopics)
	if len(remaining) == 0 {
		return EndSession{Reason: ReasonTopicsExhausted}
	}
	return SwitchTopic{Topic: p.Pick(remaining)}
}
