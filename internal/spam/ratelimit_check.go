package spam

import (
	"context"

	"github.com/talentgrid/intake-service/internal/ratelimit"
	"github.com/talentgrid/intake-service/pkg/logging"
)

// RateLimitCheck caps submissions per source IP through the fixed-window
// limiter. Unlike the other defenses, its rejection is told to the user
// plainly; being throttled is self-evident anyway.
type RateLimitCheck struct {
	limiter *ratelimit.FixedWindowLimiter
	logger  *logging.Logger
}

// NewRateLimitCheck creates the rate limit defense.
func NewRateLimitCheck(limiter *ratelimit.FixedWindowLimiter, logger *logging.Logger) *RateLimitCheck {
	if logger == nil {
		logger = logging.Default()
	}
	return &RateLimitCheck{limiter: limiter, logger: logger}
}

func (c *RateLimitCheck) Name() string { return CheckRateLimit }

func (c *RateLimitCheck) Inspect(ctx context.Context, sub *Submission) Verdict {
	result, err := c.limiter.Check(ctx, ratelimit.IdentityKey(sub.SourceIP))
	if err != nil {
		// Limiter already fails open internally; this guards a future
		// implementation that surfaces errors instead.
		c.logger.Error("rate limit check errored", "error", err)
		return Verdict{Check: CheckRateLimit, Passed: true, Reason: "limiter unavailable"}
	}
	if !result.Allowed {
		return Verdict{Check: CheckRateLimit, Passed: false, Reason: result.Message}
	}
	return Verdict{Check: CheckRateLimit, Passed: true}
}

func (c *RateLimitCheck) RejectionMessage() string {
	return "Too many submissions from your network. Please try again later or call us directly."
}
