package decision

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/report"
	"github.com/highlog/interviewer/internal/topics"
)

func reply(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestEngine_Decide(t *testing.T) {
	tests := []struct {
		body string
		want interview.TurnAction
	}{
		{`{"action":"follow_up","reason":"vague"}`, interview.ProbeDeeper{}},
		{`{"action":"new_topic","reason":"fine"}`, interview.SwitchTopic{}},
		{`{"action":"wrap_up","reason":"done"}`, interview.EndSession{Reason: interview.ReasonEngineDecided}},
	}
	for _, tt := range tests {
		mock := llm.NewMockProvider(reply(tt.body))
		e := New(mock, DefaultConfig())

		got, err := e.Decide(context.Background(), interview.DecisionInput{
			SessionID:     "s1",
			Difficulty:    interview.Normal,
			Topic:         topics.Reading,
			RemainingTime: 300,
			Question:      "What book changed you?",
			Answer:        "Sapiens, because it made me question history.",
			ResponseTime:  35,
			Evidence:      []interview.Passage{{Text: "Read Sapiens in grade 11.", Category: topics.CategoryReading}},
		})
		if err != nil {
			t.Fatalf("Decide(%s): %v", tt.body, err)
		}
		if got != tt.want {
			t.Errorf("Decide(%s) = %#v, want %#v", tt.body, got, tt.want)
		}

		call := mock.LastCall()
		if call.Schema != NextActionSchema {
			t.Error("expected the next-action schema")
		}
		msg := call.Messages[0].Content
		for _, want := range []string{"독서", "Remaining time: 300s", "took 35s", "Read Sapiens in grade 11."} {
			if !strings.Contains(msg, want) {
				t.Errorf("decide message missing %q:\n%s", want, msg)
			}
		}
	}
}

func TestEngine_DecideUnknownActionIsEngineError(t *testing.T) {
	e := New(llm.NewMockProvider(reply(`{"action":"panic","reason":"?"}`)), DefaultConfig())
	_, err := e.Decide(context.Background(), interview.DecisionInput{})
	if !errors.Is(err, interview.ErrEngine) {
		t.Fatalf("err = %v, want ErrEngine", err)
	}
}

func TestEngine_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", &llm.ErrRateLimit{Err: errors.New("429")}, interview.ErrTransient},
		{"provider down", &llm.ErrProviderUnavailable{Err: errors.New("503")}, interview.ErrEngine},
		{"bad schema", &llm.ErrInvalidResponse{Err: errors.New("missing action")}, interview.ErrEngine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(llm.NewMockProvider(llm.MockResponse{Err: tt.err}), DefaultConfig())
			_, err := e.OpeningQuestion(context.Background(), interview.OpeningInput{Topic: topics.Club})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEngine_QuestionsCarryTopicAndTone(t *testing.T) {
	mock := llm.NewMockProvider(
		reply(`{"question":"  동아리에서 맡은 역할은 무엇이었나요?  "}`),
		reply(`{"question":"그 결정의 근거는 무엇이었나요?"}`),
	)
	e := New(mock, DefaultConfig())

	q, err := e.OpeningQuestion(context.Background(), interview.OpeningInput{
		Difficulty: interview.Easy,
		Topic:      topics.Club,
	})
	if err != nil {
		t.Fatal(err)
	}
	if q != "동아리에서 맡은 역할은 무엇이었나요?" {
		t.Errorf("question not trimmed: %q", q)
	}
	msg := mock.LastCall().Messages[0].Content
	if !strings.Contains(msg, topics.Club.Guideline()) || !strings.Contains(msg, "warm") {
		t.Errorf("opening message missing guideline or tone:\n%s", msg)
	}
	if !strings.Contains(msg, "Write the question in Korean.") {
		t.Errorf("opening message missing language:\n%s", msg)
	}

	_, err = e.FollowUp(context.Background(), interview.FollowUpInput{
		Difficulty: interview.Hard,
		Topic:      topics.Club,
		Question:   "What was your role?",
		Answer:     "I led the robot team.",
		ProbeIndex: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	msg = mock.LastCall().Messages[0].Content
	for _, want := range []string{"pressure interview", "Follow-up number: 1", "I led the robot team.", "Student record excerpts:\nNone"} {
		if !strings.Contains(msg, want) {
			t.Errorf("follow-up message missing %q:\n%s", want, msg)
		}
	}
}

func TestEngine_EmptyQuestionRejected(t *testing.T) {
	e := New(llm.NewMockProvider(reply(`{"question":"   "}`)), DefaultConfig())
	_, err := e.FollowUp(context.Background(), interview.FollowUpInput{Topic: topics.Grades})
	if !errors.Is(err, interview.ErrEngine) {
		t.Errorf("err = %v, want ErrEngine", err)
	}
}

func TestEngine_EvaluateAnswer(t *testing.T) {
	e := New(llm.NewMockProvider(reply(`{"score":7,"rating":"good","strengths":["specific"],"weaknesses":[]}`)), DefaultConfig())
	a, err := e.EvaluateAnswer(context.Background(), interview.DecisionInput{Topic: topics.Career})
	if err != nil {
		t.Fatal(err)
	}
	if a.Score != 7 || a.Rating != interview.RatingGood || len(a.Strengths) != 1 {
		t.Errorf("analysis = %+v", a)
	}
}

func TestEngine_GenerateReport(t *testing.T) {
	body := `{
		"scores": {"major_fit": 20, "character": 19, "growth_potential": 22, "communication": 17},
		"strength_tags": ["concrete examples"],
		"weakness_tags": ["abstract answers"],
		"detailed_analysis": [
			{"question": "Please introduce yourself.", "evaluation": "good", "improvement_point": "lead with the conclusion", "supplement_needed": "mention results"}
		]
	}`
	mock := llm.NewMockProvider(reply(body))
	e := New(mock, DefaultConfig())

	a, err := e.GenerateReport(context.Background(), report.AnalysisInput{
		SessionID:  "s1",
		Difficulty: interview.Normal,
		Transcript: []report.Turn{{Question: "Please introduce yourself.", Answer: "Hi.", ResponseTime: 12}},
		Stats:      interview.SummaryStats{QuestionCount: 1, AvgResponseTime: 12, ElapsedTime: 12},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.Scores.Sum() != 78 {
		t.Errorf("scores = %+v", a.Scores)
	}
	if len(a.Breakdown) != 1 || a.Breakdown[0].Rating != interview.RatingGood {
		t.Errorf("breakdown = %+v", a.Breakdown)
	}

	call := mock.LastCall()
	if call.Schema != ReportSchema || call.MaxTokens != DefaultConfig().ReportMaxTokens {
		t.Errorf("unexpected request settings: schema=%v max=%d", call.Schema.Name, call.MaxTokens)
	}
	if !strings.Contains(call.Messages[0].Content, "A: Hi. (took 12s)") {
		t.Errorf("transcript missing from message:\n%s", call.Messages[0].Content)
	}
}

func TestEngine_RecordsPurposeAndSession(t *testing.T) {
	rec := &recordingProvider{}
	e := New(rec, DefaultConfig())
	_, _ = e.Decide(context.Background(), interview.DecisionInput{SessionID: "interview_r_1"})
	if rec.purpose != "decide" || rec.session != "interview_r_1" {
		t.Errorf("purpose=%q session=%q", rec.purpose, rec.session)
	}
}

type recordingProvider struct {
	purpose, session string
}

func (r *recordingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	r.purpose = llm.PurposeFrom(ctx)
	r.session = llm.SessionFrom(ctx)
	return &llm.Response{Content: json.RawMessage(`{"action":"new_topic","reason":"ok"}`)}, nil
}

func (r *recordingProvider) ModelID() string { return "recording" }
