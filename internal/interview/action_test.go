package interview

import (
	"errors"
	"testing"

	"github.com/highlog/interviewer/internal/topics"
)

func TestForcedAction(t *testing.T) {
	cfg := DefaultConfig()
	all := topics.All()

	tests := []struct {
		name string
		s    Session
		rt   int
		want TurnAction
	}{
		{
			name: "time runs out before anything else",
			s:    Session{Stage: StageIntro, RemainingTime: 50},
			rt:   25,
			want: EndSession{Reason: ReasonTimeExhausted},
		},
		{
			name: "introduction leads into a topic",
			s:    Session{Stage: StageIntro, RemainingTime: 600},
			rt:   40,
			want: SwitchTopic{},
		},
		{
			name: "all topics asked",
			s:    Session{Stage: StageMain, RemainingTime: 300, AskedTopics: all},
			rt:   10,
			want: EndSession{Reason: ReasonTopicsExhausted},
		},
		{
			name: "probe cap reached",
			s:    Session{Stage: StageMain, RemainingTime: 300, AskedTopics: all[:2], CurrentTopic: all[1], ProbeCount: 1},
			rt:   10,
			want: SwitchTopic{},
		},
		{
			name: "engine decides",
			s:    Session{Stage: StageMain, RemainingTime: 300, AskedTopics: all[:2], CurrentTopic: all[1]},
			rt:   10,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forcedAction(&tt.s, tt.rt, cfg)
			if got != tt.want {
				t.Errorf("forcedAction = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseVerdict(t *testing.T) {
	tests := map[string]TurnAction{
		"follow_up": ProbeDeeper{},
		"new_topic": SwitchTopic{},
		"wrap_up":   EndSession{Reason: ReasonEngineDecided},
	}
	for in, want := range tests {
		got, err := ParseVerdict(in)
		if err != nil || got != want {
			t.Errorf("ParseVerdict(%q) = %#v, %v", in, got, err)
		}
	}
	if _, err := ParseVerdict("retry"); !errors.Is(err, ErrEngine) {
		t.Errorf("unknown verdict: err = %v, want ErrEngine", err)
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	all := topics.All()
	s := Session{
		Stage:        StageMain,
		AskedTopics:  []topics.Topic{all[0]},
		CurrentTopic: all[0],
		ProbeCount:   1,
		TimeBudget:   600,
	}

	next := applySwitch(s, SwitchTopic{Topic: all[1]}, "q")
	if len(s.AskedTopics) != 1 || s.CurrentTopic != all[0] || s.ProbeCount != 1 {
		t.Fatalf("input mutated: %+v", s)
	}
	if next.CurrentTopic != all[1] || next.ProbeCount != 0 || len(next.AskedTopics) != 2 {
		t.Errorf("applySwitch = %+v", next)
	}

	probed := applyProbe(next, "deeper")
	if probed.ProbeCount != 1 || next.ProbeCount != 0 {
		t.Errorf("applyProbe counts: next=%d probed=%d", next.ProbeCount, probed.ProbeCount)
	}

	ended := applyEnd(probed, EndSession{Reason: ReasonEngineDecided}, fixedNow)
	if ended.Stage != StageWrapUp || ended.Status != StatusCompleted || probed.Stage != StageMain {
		t.Errorf("applyEnd stage=%s status=%s", ended.Stage, ended.Status)
	}
}

func TestStageNeverMovesBackwards(t *testing.T) {
	s := Session{Stage: StageWrapUp}
	next := applySwitch(s, SwitchTopic{Topic: topics.All()[0]}, "q")
	if next.Stage != StageWrapUp {
		t.Errorf("Stage = %s, want WRAP_UP", next.Stage)
	}
}

func TestComputeStats(t *testing.T) {
	log := []LogEntry{{ResponseTime: 40}, {ResponseTime: 25}, {ResponseTime: 30}}
	got := ComputeStats(log, 600, 505)
	want := SummaryStats{QuestionCount: 3, AvgResponseTime: 31, TotalResponseTime: 95, ElapsedTime: 95}
	if got != want {
		t.Errorf("ComputeStats = %+v, want %+v", got, want)
	}
	if empty := ComputeStats(nil, 600, 600); empty != (SummaryStats{}) {
		t.Errorf("ComputeStats(nil) = %+v", empty)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.TimeBudget = 20
	bad.OpeningQuestion = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected validation errors")
	}
}
