// Package theme holds the terminal styles of the interviewer CLI.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/highlog/interviewer/internal/interview"
)

// Palette
var (
	Primary = lipgloss.Color("#2563EB") // Blue
	Success = lipgloss.Color("#16A34A") // Green
	Warning = lipgloss.Color("#D97706") // Amber
	Error   = lipgloss.Color("#DC2626") // Red
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Interviewer = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Closing = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	BarFilled = lipgloss.NewStyle().
			Foreground(Primary)

	BarEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

const barWidth = 25

// ScoreBar renders score out of total as a fixed-width bar.
func ScoreBar(score, total int) string {
	if total <= 0 {
		return ""
	}
	filled := min(max(score, 0)*barWidth/total, barWidth)
	return BarFilled.Render(strings.Repeat("█", filled)) +
		BarEmpty.Render(strings.Repeat("░", barWidth-filled))
}

// Rating colors a per-answer rating.
func Rating(r interview.Rating) string {
	s := lipgloss.NewStyle().Bold(true)
	switch r {
	case interview.RatingGood:
		s = s.Foreground(Success)
	case interview.RatingAverage:
		s = s.Foreground(Warning)
	case interview.RatingPoor:
		s = s.Foreground(Error)
	}
	return s.Render(string(r))
}
