package interview

import "time"

// MaxCategoryScore is the ceiling of each report category.
const MaxCategoryScore = 25

// Scores are the four report categories and their total.
type Scores struct {
	MajorFit        int `json:"major_fit"`
	Character       int `json:"character"`
	GrowthPotential int `json:"growth_potential"`
	Communication   int `json:"communication"`
	Total           int `json:"total"`
}

// Sum returns the sum of the four categories.
func (s Scores) Sum() int {
	return s.MajorFit + s.Character + s.GrowthPotential + s.Communication
}

// Rating is the qualitative evaluation of a single answer.
type Rating string

const (
	RatingGood    Rating = "good"
	RatingAverage Rating = "average"
	RatingPoor    Rating = "poor"
)

// Valid reports whether r is one of the three ratings.
func (r Rating) Valid() bool {
	return r == RatingGood || r == RatingAverage || r == RatingPoor
}

// QuestionReview is the per-question breakdown of a report.
type QuestionReview struct {
	Question         string `json:"question"`
	ResponseTime     int    `json:"response_time"`
	Rating           Rating `json:"evaluation"`
	ImprovementPoint string `json:"improvement_point"`
	SupplementNeeded string `json:"supplement_needed"`
}

// Report is the final scored evaluation of a session.
type Report struct {
	Scores       Scores           `json:"scores"`
	StrengthTags []string         `json:"strength_tags"`
	WeaknessTags []string         `json:"weakness_tags"`
	Breakdown    []QuestionReview `json:"detailed_analysis"`
	Stats        SummaryStats     `json:"stats"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// AnswerAnalysis is the optional live evaluation of a single answer.
type AnswerAnalysis struct {
	Score      int      `json:"score"`
	Rating     Rating   `json:"rating"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}
