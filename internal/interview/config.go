package interview

import (
	"errors"
	"fmt"
)

// OpeningQuestion is the fixed first question of every session.
const OpeningQuestion = "Please introduce yourself."

// Config holds the interview rules.
type Config struct {
	TimeBudget        int    `yaml:"time_budget"`          // seconds per session
	MinRemaining      int    `yaml:"min_remaining"`        // end when fewer seconds would remain
	MaxProbesPerTopic int    `yaml:"max_probes_per_topic"` // follow-ups before a forced switch
	LiveAnalysis      bool   `yaml:"live_analysis"`        // evaluate each answer as it arrives
	OpeningQuestion   string `yaml:"opening_question"`
}

// DefaultConfig returns the standard ten-minute interview.
func DefaultConfig() Config {
	return Config{
		TimeBudget:        600,
		MinRemaining:      30,
		MaxProbesPerTopic: 1,
		OpeningQuestion:   OpeningQuestion,
	}
}

// Validate checks that the rules are usable.
func (c Config) Validate() error {
	var errs []error
	if c.TimeBudget <= 0 {
		errs = append(errs, fmt.Errorf("time_budget must be positive, got %d", c.TimeBudget))
	}
	if c.MinRemaining < 0 || c.MinRemaining >= c.TimeBudget {
		errs = append(errs, fmt.Errorf("min_remaining must be in [0, time_budget), got %d", c.MinRemaining))
	}
	if c.MaxProbesPerTopic < 0 {
		errs = append(errs, fmt.Errorf("max_probes_per_topic must not be negative, got %d", c.MaxProbesPerTopic))
	}
	if c.OpeningQuestion == "" {
		errs = append(errs, errors.New("opening_question must not be empty"))
	}
	return errors.Join(errs...)
}
