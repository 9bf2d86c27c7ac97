package decision

import "github.com/highlog/interviewer/internal/llm"

// NextActionSchema constrains the per-turn verdict.
var NextActionSchema = &llm.Schema{
	Name:        "next-action",
	Description: "The interviewer's next step after hearing an answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []any{"follow_up", "new_topic", "wrap_up"},
				"description": "follow_up to probe the same topic, new_topic to move on, wrap_up to finish",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One short sentence explaining the choice",
			},
		},
		"required":             []any{"action", "reason"},
		"additionalProperties": false,
	},
}

// QuestionSchema wraps a single generated question.
var QuestionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "One interview question addressed to the candidate",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question, spoken directly to the candidate",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// AnswerAnalysisSchema is the live evaluation of one answer.
var AnswerAnalysisSchema = &llm.Schema{
	Name:        "answer-analysis",
	Description: "Quick evaluation of a single interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 10,
			},
			"rating": map[string]any{
				"type": "string",
				"enum": []any{"good", "average", "poor"},
			},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"weaknesses": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"score", "rating", "strengths", "weaknesses"},
		"additionalProperties": false,
	},
}

func scoreField(desc string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     0,
		"maximum":     25,
		"description": desc,
	}
}

// ReportSchema is the final evaluation of a whole interview.
var ReportSchema = &llm.Schema{
	Name:        "interview-report",
	Description: "Scored evaluation of a finished admissions interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"major_fit":        scoreField("Understanding of the intended major and links to related activities"),
					"character":        scoreField("Attitude, diligence and consideration for others"),
					"growth_potential": scoreField("Will to learn, growth mindset, self-improvement"),
					"communication":    scoreField("Logical speaking, clear expression, listening"),
				},
				"required":             []any{"major_fit", "character", "growth_potential", "communication"},
				"additionalProperties": false,
			},
			"strength_tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"weakness_tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"detailed_analysis": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"evaluation": map[string]any{
							"type": "string",
							"enum": []any{"good", "average", "poor"},
						},
						"improvement_point": map[string]any{"type": "string"},
						"supplement_needed": map[string]any{"type": "string"},
					},
					"required":             []any{"question", "evaluation", "improvement_point", "supplement_needed"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"scores", "strength_tags", "weakness_tags", "detailed_analysis"},
		"additionalProperties": false,
	},
}
