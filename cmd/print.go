package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/ui/theme"
)

const rule = "─"

func printReport(w io.Writer, id string, rep *interview.Report) {
	sep := strings.Repeat(rule, 64)
	fmt.Fprintln(w, theme.Title.Render("Interview report: "+id))
	fmt.Fprintln(w, sep)
	for _, c := range []struct {
		name  string
		score int
	}{
		{"Major fit", rep.Scores.MajorFit},
		{"Character", rep.Scores.Character},
		{"Growth potential", rep.Scores.GrowthPotential},
		{"Communication", rep.Scores.Communication},
	} {
		fmt.Fprintf(w, "%-18s %3d / %d  %s\n", c.name, c.score, interview.MaxCategoryScore,
			theme.ScoreBar(c.score, interview.MaxCategoryScore))
	}
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "%s %3d / %d\n", theme.Label.Render(fmt.Sprintf("%-18s", "Total")), rep.Scores.Total, 4*interview.MaxCategoryScore)

	fmt.Fprintf(w, "\nStrengths:  %s\n", joinOrNone(rep.StrengthTags))
	fmt.Fprintf(w, "Weaknesses: %s\n", joinOrNone(rep.WeaknessTags))
	fmt.Fprintf(w, "\nAnswers: %d, average %ds, total %ds\n",
		rep.Stats.QuestionCount, rep.Stats.AvgResponseTime, rep.Stats.ElapsedTime)

	for i, q := range rep.Breakdown {
		fmt.Fprintf(w, "\n[%d] %s (%ds, %s)\n", i+1, q.Question, q.ResponseTime, theme.Rating(q.Rating))
		if q.ImprovementPoint != "" {
			fmt.Fprintf(w, "    Improve:    %s\n", q.ImprovementPoint)
		}
		if q.SupplementNeeded != "" {
			fmt.Fprintf(w, "    Supplement: %s\n", q.SupplementNeeded)
		}
	}
}

func printSession(w io.Writer, s *interview.Session) {
	fmt.Fprintf(w, "ID:         %s\n", s.ID)
	fmt.Fprintf(w, "User:       %s\n", s.UserID)
	fmt.Fprintf(w, "Record:     %s\n", s.RecordID)
	fmt.Fprintf(w, "Difficulty: %s\n", s.Difficulty)
	fmt.Fprintf(w, "Status:     %s", s.Status)
	if s.EndReason != "" {
		fmt.Fprintf(w, " (%s)", s.EndReason)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stage:      %s\n", s.Stage)
	fmt.Fprintf(w, "Remaining:  %ds of %ds\n", s.RemainingTime, s.TimeBudget)
	fmt.Fprintf(w, "Topics:     %s\n", joinTopics(s))
	fmt.Fprintf(w, "Started:    %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	sep := strings.Repeat(rule, 64)
	fmt.Fprintln(w)
	fmt.Fprintln(w, sep)
	for _, e := range s.Log {
		topic := "intro"
		if e.Topic != "" {
			topic = string(e.Topic)
		}
		fmt.Fprintf(w, "#%d [%s] Q: %s\n", e.Seq, topic, e.Question)
		fmt.Fprintf(w, "   A (%ds): %s\n", e.ResponseTime, e.Answer)
	}
	if !s.Finished() && s.LastQuestion != "" {
		fmt.Fprintf(w, "Pending: %s\n", s.LastQuestion)
	}
}

func joinTopics(s *interview.Session) string {
	names := make([]string, len(s.AskedTopics))
	for i, t := range s.AskedTopics {
		names[i] = string(t)
	}
	return joinOrNone(names)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
