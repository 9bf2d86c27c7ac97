package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/highlog/interviewer/internal/interview"
)

// scriptedDriver answers turns from a fixed script of results and errors.
type scriptedDriver struct {
	results   []*interview.TurnResult
	errs      []error
	answers   []string
	times     []int
	abandoned []string
}

func (d *scriptedDriver) next(answer string, rt int) (*interview.TurnResult, error) {
	d.answers = append(d.answers, answer)
	d.times = append(d.times, rt)
	i := len(d.answers) - 1
	var err error
	if i < len(d.errs) {
		err = d.errs[i]
	}
	return d.results[i], err
}

func (d *scriptedDriver) Start(_ context.Context, p interview.StartParams) (*interview.TurnResult, error) {
	return d.next(p.Answer, p.ResponseTime)
}

func (d *scriptedDriver) ProcessTurn(_ context.Context, id, answer string, rt int) (*interview.TurnResult, error) {
	if id != "s1" {
		return nil, fmt.Errorf("unexpected session %q", id)
	}
	return d.next(answer, rt)
}

func (d *scriptedDriver) Abandon(_ context.Context, id string) (*interview.Session, error) {
	d.abandoned = append(d.abandoned, id)
	return &interview.Session{ID: id}, nil
}

func (d *scriptedDriver) OpeningQuestion() string { return "Introduce yourself." }

// tickClock advances by step on every call.
func tickClock(step time.Duration) func() time.Time {
	t := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func newTestREPL(d turnDriver, input string) (*repl, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &repl{
		driver: d,
		in:     newAnswerScanner(strings.NewReader(input)),
		out:    out,
		now:    tickClock(5 * time.Second),
	}, out
}

func TestREPLRunsToEnd(t *testing.T) {
	d := &scriptedDriver{results: []*interview.TurnResult{
		{SessionID: "s1", Question: "Tell me about your attendance."},
		{SessionID: "s1", Question: "The interview is over.", Finished: true},
	}}
	r, out := newTestREPL(d, "Hello, I am Minji.\nI was never late.\n")

	id, finished, err := r.run(context.Background(), interview.StartParams{UserID: "u", RecordID: "rec"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if id != "s1" || !finished {
		t.Errorf("run = (%q, %v), want (s1, true)", id, finished)
	}
	if want := []string{"Hello, I am Minji.", "I was never late."}; strings.Join(d.answers, "|") != strings.Join(want, "|") {
		t.Errorf("answers = %v, want %v", d.answers, want)
	}
	for i, rt := range d.times {
		if rt != 5 {
			t.Errorf("response time %d = %d, want 5", i, rt)
		}
	}
	for _, s := range []string{"Introduce yourself.", "Tell me about your attendance.", "The interview is over."} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output missing %q", s)
		}
	}
	if len(d.abandoned) != 0 {
		t.Errorf("abandoned = %v, want none", d.abandoned)
	}
}

func TestREPLQuitAbandons(t *testing.T) {
	d := &scriptedDriver{results: []*interview.TurnResult{
		{SessionID: "s1", Question: "Next question."},
	}}
	r, out := newTestREPL(d, "First answer.\n/quit\n")

	id, finished, err := r.run(context.Background(), interview.StartParams{RecordID: "rec"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if finished {
		t.Error("quit should not report a finished interview")
	}
	if id != "s1" || len(d.abandoned) != 1 || d.abandoned[0] != "s1" {
		t.Errorf("abandoned = %v for id %q, want [s1]", d.abandoned, id)
	}
	if !strings.Contains(out.String(), "abandoned") {
		t.Error("output should confirm the abandon")
	}
}

func TestREPLLongAnswers(t *testing.T) {
	long := strings.Repeat("가", 40*1024) // 120 KiB of UTF-8
	d := &scriptedDriver{results: []*interview.TurnResult{
		{SessionID: "s1", Question: "Next question."},
	}}
	r, _ := newTestREPL(d, long+"\n"+strings.Repeat("x", maxAnswerBytes+1)+"\n")

	id, finished, err := r.run(context.Background(), interview.StartParams{RecordID: "rec"})
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("err = %v, want bufio.ErrTooLong for the oversized answer", err)
	}
	if finished || id != "s1" {
		t.Errorf("id = %q finished = %v", id, finished)
	}
	if len(d.answers) != 1 || d.answers[0] != long {
		t.Errorf("the 120 KiB answer was not delivered intact (%d answers)", len(d.answers))
	}
	if len(d.abandoned) != 0 {
		t.Errorf("abandoned = %v, an unreadable answer must not abandon the session", d.abandoned)
	}
}

func TestREPLQuitBeforeFirstAnswer(t *testing.T) {
	d := &scriptedDriver{}
	r, _ := newTestREPL(d, "")

	id, finished, err := r.run(context.Background(), interview.StartParams{RecordID: "rec"})
	if err != nil || id != "" || finished {
		t.Errorf("run = (%q, %v, %v), want empty", id, finished, err)
	}
	if len(d.abandoned) != 0 {
		t.Error("nothing to abandon before a session exists")
	}
}

func TestREPLResendsAfterTransient(t *testing.T) {
	d := &scriptedDriver{
		results: []*interview.TurnResult{
			{SessionID: "s1"},
			{SessionID: "s1", Question: "Done.", Finished: true},
		},
		errs: []error{interview.ErrTransient},
	}
	r, out := newTestREPL(d, "My answer.\n\n")

	id, finished, err := r.run(context.Background(), interview.StartParams{RecordID: "rec"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if id != "s1" || !finished {
		t.Errorf("run = (%q, %v), want (s1, true)", id, finished)
	}
	if len(d.answers) != 2 || d.answers[0] != d.answers[1] {
		t.Errorf("answers = %v, want the same answer resent", d.answers)
	}
	if !strings.Contains(out.String(), "busy") {
		t.Error("output should tell the candidate the interviewer is busy")
	}
}

func TestREPLQuitWhileBusy(t *testing.T) {
	d := &scriptedDriver{
		results: []*interview.TurnResult{{SessionID: "s1"}},
		errs:    []error{interview.ErrTransient},
	}
	r, _ := newTestREPL(d, "My answer.\n/quit\n")

	id, finished, err := r.run(context.Background(), interview.StartParams{RecordID: "rec"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if finished || id != "s1" {
		t.Errorf("run = (%q, %v), want (s1, false)", id, finished)
	}
	if len(d.abandoned) != 1 {
		t.Errorf("abandoned = %v, want [s1]", d.abandoned)
	}
}

func TestPrintReport(t *testing.T) {
	rep := &interview.Report{
		Scores:       interview.Scores{MajorFit: 20, Character: 18, GrowthPotential: 22, Communication: 18, Total: 78},
		StrengthTags: []string{"curiosity"},
		Breakdown: []interview.QuestionReview{
			{Question: "Why this major?", ResponseTime: 40, Rating: interview.RatingGood, ImprovementPoint: "Cite the project."},
		},
		Stats: interview.SummaryStats{QuestionCount: 1, AvgResponseTime: 40, ElapsedTime: 40},
	}
	var buf bytes.Buffer
	printReport(&buf, "s1", rep)
	got := buf.String()
	for _, s := range []string{"s1", "78 / 100", "curiosity", "Weaknesses: none", "Why this major?", "Cite the project."} {
		if !strings.Contains(got, s) {
			t.Errorf("report output missing %q:\n%s", s, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("면접관입니다", 3); got != "면접관" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
