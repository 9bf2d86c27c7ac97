package server

import (
	"context"
	"net/http"
	"time"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/topics"
)

type startRequest struct {
	RecordID     string `json:"record_id" validate:"required,max=128"`
	Difficulty   string `json:"difficulty" validate:"omitempty,max=16"`
	Answer       string `json:"answer" validate:"max=20000"`
	ResponseTime int    `json:"response_time" validate:"gte=0,lte=3600"`
}

type answerRequest struct {
	Answer       string `json:"answer" validate:"max=20000"`
	ResponseTime int    `json:"response_time" validate:"gte=0,lte=3600"`
}

type turnResponse struct {
	SessionID      string                    `json:"session_id"`
	Question       string                    `json:"question,omitempty"`
	ClosingMessage string                    `json:"closing_message,omitempty"`
	Action         string                    `json:"action,omitempty"`
	Topic          topics.Topic              `json:"topic,omitempty"`
	Stage          interview.Stage           `json:"stage"`
	RemainingTime  int                       `json:"remaining_time"`
	Finished       bool                      `json:"finished"`
	Analysis       *interview.AnswerAnalysis `json:"analysis,omitempty"`
}

func newTurnResponse(res *interview.TurnResult) turnResponse {
	out := turnResponse{
		SessionID:     res.SessionID,
		Topic:         res.Topic,
		Stage:         res.Stage,
		RemainingTime: res.RemainingTime,
		Finished:      res.Finished,
		Analysis:      res.Analysis,
	}
	if res.Action != nil {
		out.Action = interview.ActionName(res.Action)
	}
	if res.Finished {
		out.ClosingMessage = res.Question
	} else {
		out.Question = res.Question
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpening(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"question": s.interviews.OpeningQuestion()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.interviews.Start(r.Context(), interview.StartParams{
		UserID:       userFrom(r.Context()),
		RecordID:     req.RecordID,
		Difficulty:   interview.Difficulty(req.Difficulty),
		Answer:       req.Answer,
		ResponseTime: req.ResponseTime,
	})
	if err != nil {
		// The session exists when the engine was only temporarily
		// unavailable; tell the client where to resubmit.
		if res != nil && res.SessionID != "" {
			w.Header().Set("Location", "/v1/interviews/"+res.SessionID)
		}
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/interviews/"+res.SessionID)
	s.jsonResponse(w, http.StatusCreated, newTurnResponse(res))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.owned(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req answerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.interviews.ProcessTurn(r.Context(), id, req.Answer, req.ResponseTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newTurnResponse(res))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.owned(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.interviews.Abandon(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.owned(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

type reportResponse struct {
	SessionID string            `json:"session_id"`
	Report    *interview.Report `json:"report"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.owned(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Scoring outlives a client that disconnects mid-request; the stored
	// report is returned on the next call.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Minute)
	defer cancel()

	rep, err := s.reports.Generate(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reportResponse{SessionID: id, Report: rep})
}

// owned loads a session and hides it from anyone but its owner.
func (s *Server) owned(ctx context.Context, id string) (*interview.Session, error) {
	sess, err := s.interviews.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userFrom(ctx) {
		return nil, interview.ErrNotFound
	}
	return sess, nil
}
