package theme

import (
	"strings"
	"testing"

	"github.com/highlog/interviewer/internal/interview"
)

func TestScoreBar(t *testing.T) {
	tests := []struct {
		score, total int
		filled       int
	}{
		{0, 25, 0},
		{25, 25, barWidth},
		{10, 25, 10},
		{-3, 25, 0},
		{40, 25, barWidth},
		{50, 100, 12},
	}
	for _, tt := range tests {
		bar := ScoreBar(tt.score, tt.total)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("ScoreBar(%d, %d) filled = %d, want %d", tt.score, tt.total, got, tt.filled)
		}
		if got := strings.Count(bar, "░"); got != barWidth-tt.filled {
			t.Errorf("ScoreBar(%d, %d) empty = %d, want %d", tt.score, tt.total, got, barWidth-tt.filled)
		}
	}
	if ScoreBar(3, 0) != "" {
		t.Error("ScoreBar with zero total should be empty")
	}
}

func TestRating(t *testing.T) {
	for _, r := range []interview.Rating{interview.RatingGood, interview.RatingAverage, interview.RatingPoor} {
		if got := Rating(r); !strings.Contains(got, string(r)) {
			t.Errorf("Rating(%q) = %q, missing label", r, got)
		}
	}
}
