package spam

import (
	"context"

	"github.com/talentgrid/intake-service/pkg/logging"
)

// Chain evaluates defenses in order and stops at the first failure, so a
// tripped honeypot never costs a CAPTCHA network call.
type Chain struct {
	checks []Checker
	logger *logging.Logger
}

// NewChain creates a chain over the given checks. Order matters: put cheap
// local checks before anything that does I/O.
func NewChain(logger *logging.Logger, checks ...Checker) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	return &Chain{checks: checks, logger: logger}
}

// Evaluate runs the chain. It returns the verdicts produced before and
// including the first failure, and the failed checker (nil when every
// check passed).
func (c *Chain) Evaluate(ctx context.Context, sub *Submission) ([]Verdict, Checker) {
	verdicts := make([]Verdict, 0, len(c.checks))
	for _, check := range c.checks {
		v := check.Inspect(ctx, sub)
		verdicts = append(verdicts, v)
		if !v.Passed {
			c.logger.Warn("spam check rejected submission",
				"check", v.Check,
				"reason", v.Reason,
			)
			return verdicts, check
		}
	}
	return verdicts, nil
}
