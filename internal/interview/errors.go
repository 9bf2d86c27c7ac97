package interview

import "errors"

var (
	// ErrNotFound means the session id is unknown.
	ErrNotFound = errors.New("session not found")

	// ErrSessionFinished means a turn was submitted to a terminal session.
	ErrSessionFinished = errors.New("session already finished")

	// ErrInvalidInput means the request itself is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means another writer persisted a turn for the same session
	// first. The caller may reload and retry.
	ErrConflict = errors.New("concurrent session update")

	// ErrTransient marks rate or quota exhaustion in the decision engine.
	// Nothing was persisted and the whole turn can be retried later.
	ErrTransient = errors.New("decision engine temporarily unavailable")

	// ErrEngine marks any other decision engine failure, including output
	// outside the expected schema.
	ErrEngine = errors.New("decision engine failure")

	// ErrNoData means there is no interaction log to analyze.
	ErrNoData = errors.New("no interview data to analyze")

	// ErrNotReady means the session has not reached a terminal status.
	ErrNotReady = errors.New("session not finished yet")

	// ErrAnalysis means report generation failed. The session is unchanged.
	ErrAnalysis = errors.New("report analysis failed")

	// ErrReportExists means a report is already attached to the session.
	ErrReportExists = errors.New("report already attached")
)
