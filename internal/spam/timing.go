package spam

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimingCheck rejects submissions completed faster than a human could read
// and fill the form. The page embeds its render time as a hidden field;
// the check compares it against the clock at submission time.
type TimingCheck struct {
	minElapsed time.Duration
	now        func() time.Time
}

// NewTimingCheck creates the timing defense. now may be nil; clock
// injection exists for tests.
func NewTimingCheck(minElapsed time.Duration, now func() time.Time) *TimingCheck {
	if now == nil {
		now = time.Now
	}
	return &TimingCheck{minElapsed: minElapsed, now: now}
}

func (c *TimingCheck) Name() string { return CheckTiming }

func (c *TimingCheck) Inspect(_ context.Context, sub *Submission) Verdict {
	raw := strings.TrimSpace(sub.FormStartTime)
	if raw == "" {
		// Conservative default: a missing render timestamp is rejected.
		return Verdict{Check: CheckTiming, Passed: false, Reason: "form render timestamp missing"}
	}
	start, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Verdict{Check: CheckTiming, Passed: false, Reason: "form render timestamp not numeric"}
	}

	elapsed := c.now().Unix() - start
	if elapsed < int64(c.minElapsed.Seconds()) {
		return Verdict{
			Check:  CheckTiming,
			Passed: false,
			Reason: fmt.Sprintf("submitted after %ds, minimum is %s", elapsed, c.minElapsed),
		}
	}
	return Verdict{Check: CheckTiming, Passed: true}
}

func (c *TimingCheck) RejectionMessage() string {
	return "Something went wrong with your submission. Please try again."
}
