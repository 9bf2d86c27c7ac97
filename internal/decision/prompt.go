package decision

import (
	"fmt"
	"strings"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/report"
	"github.com/highlog/interviewer/internal/topics"
)

const decideSystemPrompt = `You are a university admissions interviewer talking with a high-school student.
After each answer you decide the next step of the interview.

Keep the bar at a high-school level. Evaluation happens after the interview, so do not dig too deep mid-interview and never ask professional or workplace-level questions.

Choose exactly one action:
- follow_up: only when the answer was too abstract or unclear to follow. At most once per topic.
- new_topic: the answer was reasonable, or a follow-up was already asked.
- wrap_up: time is nearly over or there is nothing left worth asking.`

const openingSystemPrompt = `You are a university admissions interviewer talking with a high-school student.
Write the first question on a new interview topic.

Guidelines:
1. Ask an open question tied to the topic.
2. Invite the student to describe their own experience and thinking.
3. Ask for a concrete example.
4. When record excerpts are given, anchor the question in them.`

const followUpSystemPrompt = `You are a university admissions interviewer talking with a high-school student.
Write one follow-up question on the student's last answer.

Guidelines:
1. Press on the concrete cases, reasoning and lessons the student mentioned.
2. Use patterns like "Why did you think so?", "What exactly was the result?", "What did you struggle with along the way?".
3. Cross-check the answer against the record excerpts when they are given.`

const analysisSystemPrompt = `You are a university admissions interviewer. Rate one answer from a high-school student on a 0-10 scale and list its strengths and weaknesses in a few words each.`

const reportSystemPrompt = `You are a university admissions interviewer. The interview is over; write the overall evaluation.

Scoring, each category 0-25:
- major_fit: understanding of the intended major and links to related activities
- character: attitude, diligence, consideration for others
- growth_potential: will to learn, growth mindset, self-improvement effort
- communication: logical speaking, clear expression, listening

Strength tag examples: gives concrete examples, well-structured logic, confident attitude, cites concrete numbers.
Weakness tag examples: slow answers, lacks evidence, needed the question repeated, abstract answers, unclear conclusion.

For every question, in order, give an evaluation (good, average or poor) based on completeness, specificity and logic, one improvement point such as "state your own role more clearly", and one thing to supplement such as "add one sentence linking the lesson to your major".`

func tone(d interview.Difficulty) string {
	switch d {
	case interview.Easy:
		return "Be warm and encouraging. Keep questions simple."
	case interview.Hard:
		return "This is a pressure interview. Point out gaps in logic and challenge inconsistencies with the record."
	default:
		return "Be neutral and professional."
	}
}

func languageLine(lang string) string {
	if lang == "" {
		return ""
	}
	return fmt.Sprintf("\nWrite the question in %s.", lang)
}

func topicLabel(t topics.Topic) string {
	if t == "" {
		return "self-introduction"
	}
	return fmt.Sprintf("%s (%s)", t.Label(), t)
}

func writeEvidence(b *strings.Builder, passages []interview.Passage) {
	b.WriteString("\nStudent record excerpts:\n")
	if len(passages) == 0 {
		b.WriteString("None\n")
		return
	}
	for i, p := range passages {
		fmt.Fprintf(b, "%d. [%s] %s\n", i+1, p.Category, p.Text)
	}
}

func buildDecideMessage(in interview.DecisionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Current topic: %s\n", topicLabel(in.Topic))
	fmt.Fprintf(&b, "Remaining time: %ds\n", in.RemainingTime)
	fmt.Fprintf(&b, "\nPrevious question:\n%s\n", in.Question)
	fmt.Fprintf(&b, "\nStudent answer (took %ds):\n%s\n", in.ResponseTime, in.Answer)
	writeEvidence(&b, in.Evidence)
	return b.String()
}

func buildOpeningMessage(in interview.OpeningInput, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Tone: %s\n", tone(in.Difficulty))
	fmt.Fprintf(&b, "New topic: %s\n", topicLabel(in.Topic))
	fmt.Fprintf(&b, "Topic focus: %s\n", in.Topic.Guideline())
	writeEvidence(&b, in.Evidence)
	b.WriteString(languageLine(cfg.Language))
	return b.String()
}

func buildFollowUpMessage(in interview.FollowUpInput, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Tone: %s\n", tone(in.Difficulty))
	fmt.Fprintf(&b, "Current topic: %s\n", topicLabel(in.Topic))
	fmt.Fprintf(&b, "Follow-up number: %d\n", in.ProbeIndex)
	fmt.Fprintf(&b, "\nPrevious question:\n%s\n", in.Question)
	fmt.Fprintf(&b, "\nStudent answer:\n%s\n", in.Answer)
	writeEvidence(&b, in.Evidence)
	b.WriteString(languageLine(cfg.Language))
	return b.String()
}

func buildReportMessage(in report.AnalysisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Answers: %d\n", in.Stats.QuestionCount)
	fmt.Fprintf(&b, "Average response time: %ds\n", in.Stats.AvgResponseTime)
	fmt.Fprintf(&b, "Total time: %ds\n", in.Stats.ElapsedTime)
	fmt.Fprintf(&b, "\nTranscript (answers capped at %d characters):\n", report.MaxAnswerRunes)
	for i, t := range in.Transcript {
		fmt.Fprintf(&b, "\n[%d] Q: %s\n", i+1, t.Question)
		fmt.Fprintf(&b, "A: %s (took %ds)\n", t.Answer, t.ResponseTime)
	}
	return b.String()
}
