package interview

import (
	"fmt"
	"time"
)

// answered returns the snapshot after the candidate's answer is accounted
// for, together with the log entry recording it. The entry's Seq is
// assigned by the store.
func answered(s *Session, answer string, responseTime int, now time.Time) (Session, LogEntry) {
	next := s.clone()
	next.RemainingTime = max(s.RemainingTime-responseTime, 0)
	next.UpdatedAt = now
	entry := LogEntry{
		Question:     s.LastQuestion,
		Answer:       answer,
		ResponseTime: responseTime,
		Topic:        s.CurrentTopic,
		CreatedAt:    now,
	}
	next.Log = append(next.Log, entry)
	return next, entry
}

func applyProbe(s Session, question string) Session {
	next := s.clone()
	next.ProbeCount++
	next.LastQuestion = question
	return next
}

func applySwitch(s Session, a SwitchTopic, question string) Session {
	next := s.clone()
	next.CurrentTopic = a.Topic
	next.AskedTopics = append(next.AskedTopics, a.Topic)
	next.ProbeCount = 0
	if next.Stage.rank() < StageMain.rank() {
		next.Stage = StageMain
	}
	next.LastQuestion = question
	return next
}

func applyEnd(s Session, a EndSession, now time.Time) Session {
	next := s.clone()
	next.Stage = StageWrapUp
	next.EndReason = a.Reason
	next.Status = StatusCompleted
	if a.Reason == ReasonEngineError {
		next.Status = StatusFailed
	}
	st := ComputeStats(next.Log, next.TimeBudget, next.RemainingTime)
	next.Stats = &st
	next.LastQuestion = closingMessage(st)
	next.CompletedAt = &now
	return next
}

func closingMessage(st SummaryStats) string {
	return fmt.Sprintf("The interview is over. Thank you for your time.\n"+
		"- Questions answered: %d\n- Time used: %ds", st.QuestionCount, st.ElapsedTime)
}
