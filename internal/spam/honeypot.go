package spam

import (
	"context"
	"strings"
)

// HoneypotCheck rejects submissions that filled the hidden website_url
// field. The field is invisible to humans; only automated form-fillers
// populate it. How the field is hidden (off-screen positioning, tabindex)
// is a front-end concern; this check only inspects the submitted value.
type HoneypotCheck struct{}

// NewHoneypotCheck creates the honeypot defense.
func NewHoneypotCheck() *HoneypotCheck {
	return &HoneypotCheck{}
}

func (c *HoneypotCheck) Name() string { return CheckHoneypot }

func (c *HoneypotCheck) Inspect(_ context.Context, sub *Submission) Verdict {
	if strings.TrimSpace(sub.Honeypot) != "" {
		return Verdict{Check: CheckHoneypot, Passed: false, Reason: "honeypot field populated"}
	}
	return Verdict{Check: CheckHoneypot, Passed: true}
}

func (c *HoneypotCheck) RejectionMessage() string {
	return "Your submission could not be processed. Please try again."
}
