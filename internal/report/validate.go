package report

import (
	"errors"
	"fmt"

	"github.com/highlog/interviewer/internal/interview"
)

// Validate rejects analyses with out-of-range scores or unknown ratings.
// The breakdown length is not checked here; assemble aligns it to the log.
func Validate(a *Analysis) error {
	if a == nil {
		return errors.New("empty analysis")
	}

	var errs []error
	for name, v := range map[string]int{
		"major_fit":        a.Scores.MajorFit,
		"character":        a.Scores.Character,
		"growth_potential": a.Scores.GrowthPotential,
		"communication":    a.Scores.Communication,
	} {
		if v < 0 || v > interview.MaxCategoryScore {
			errs = append(errs, fmt.Errorf("score %s=%d outside [0,%d]", name, v, interview.MaxCategoryScore))
		}
	}
	for i, r := range a.Breakdown {
		if !r.Rating.Valid() {
			errs = append(errs, fmt.Errorf("breakdown[%d]: unknown rating %q", i, r.Rating))
		}
	}
	return errors.Join(errs...)
}
