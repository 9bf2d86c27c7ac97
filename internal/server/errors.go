package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
)

// retryAfterSeconds is advertised on 503 responses for transient engine
// failures.
const retryAfterSeconds = 10

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error to an HTTP status and a stable error code.
// ErrTransient is checked first: a quota error may also wrap ErrEngine.
func classify(err error) (int, string) {
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, interview.ErrTransient):
		return http.StatusServiceUnavailable, "try_again_later"
	case errors.Is(err, interview.ErrSessionFinished):
		return http.StatusConflict, "session_finished"
	case errors.Is(err, interview.ErrNotReady):
		return http.StatusConflict, "report_not_ready"
	case errors.Is(err, interview.ErrConflict), errors.Is(err, interview.ErrReportExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, interview.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, interview.ErrNoData):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, interview.ErrInvalidInput), errors.As(err, &ve):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, interview.ErrAnalysis):
		return http.StatusBadGateway, "analysis_failed"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError sends err as a JSON error body. Internal errors are logged and
// their message is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter(err)))
	case status >= http.StatusInternalServerError:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		msg = "invalid " + ve[0].Field() + ": " + ve[0].Tag()
	}
	s.errorResponse(w, status, code, msg)
}

// retryAfter prefers the provider's own hint when it sent one.
func retryAfter(err error) int {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return int(math.Ceil(rl.RetryAfter.Seconds()))
	}
	return retryAfterSeconds
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
