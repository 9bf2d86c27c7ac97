package decision

// Config controls the LLM calls made by the Engine.
type Config struct {
	// Language is the language questions are asked in.
	Language string `yaml:"language"`

	// MaxTokens is the token budget for decisions and questions.
	MaxTokens int `yaml:"max_tokens"`

	// ReportMaxTokens is the token budget for the final report.
	ReportMaxTokens int `yaml:"report_max_tokens"`

	// Temperature controls question variety (0.0-1.0). Decisions and
	// reports always run at DecisionTemperature.
	Temperature float64 `yaml:"temperature"`
}

// DecisionTemperature keeps verdicts and scores stable across retries.
const DecisionTemperature = 0.2

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Language:        "Korean",
		MaxTokens:       512,
		ReportMaxTokens: 4096,
		Temperature:     0.7,
	}
}
