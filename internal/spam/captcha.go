package spam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentgrid/intake-service/pkg/logging"
)

var tracer = otel.Tracer("github.com/talentgrid/intake-service/internal/spam")

// VerifyResponse is the verification service's JSON reply (reCAPTCHA v3
// siteverify shape).
type VerifyResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// CaptchaVerifier submits tokens to the external verification service.
type CaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *logging.Logger
}

// CaptchaConfig holds verifier configuration.
type CaptchaConfig struct {
	Secret    string
	VerifyURL string
	// Timeout bounds the verification call so a slow verifier cannot hold
	// the submission request.
	Timeout time.Duration
}

// NewCaptchaVerifier creates a verifier client. Returns nil when no secret
// is configured, which disables the check.
func NewCaptchaVerifier(cfg CaptchaConfig, logger *logging.Logger) *CaptchaVerifier {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Second
	}
	return &CaptchaVerifier{
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

// Verify submits the token and returns the service's response.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (*VerifyResponse, error) {
	ctx, span := tracer.Start(ctx, "captcha.verify")
	defer span.End()

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("spam: build captcha verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spam: captcha verify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spam: captcha verify returned status %d", resp.StatusCode)
	}

	var vr VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("spam: decode captcha verify response: %w", err)
	}

	span.SetAttributes(
		attribute.Bool("captcha.success", vr.Success),
		attribute.Float64("captcha.score", vr.Score),
	)
	return &vr, nil
}

// CaptchaCheck gates submissions on the verification service's risk score.
// A verifier outage fails open: blocking every visitor because an external
// service is down is the wrong trade for a contact form. Outages are
// logged and reported through onUnavailable so the laxity is observable.
type CaptchaCheck struct {
	verifier      *CaptchaVerifier
	minScore      float64
	logger        *logging.Logger
	onUnavailable func()
}

// NewCaptchaCheck creates the CAPTCHA defense. onUnavailable may be nil.
func NewCaptchaCheck(verifier *CaptchaVerifier, minScore float64, logger *logging.Logger, onUnavailable func()) *CaptchaCheck {
	if logger == nil {
		logger = logging.Default()
	}
	return &CaptchaCheck{
		verifier:      verifier,
		minScore:      minScore,
		logger:        logger,
		onUnavailable: onUnavailable,
	}
}

func (c *CaptchaCheck) Name() string { return CheckCaptcha }

func (c *CaptchaCheck) Inspect(ctx context.Context, sub *Submission) Verdict {
	if c.verifier == nil {
		return Verdict{Check: CheckCaptcha, Passed: true, Reason: "verifier not configured"}
	}
	if strings.TrimSpace(sub.CaptchaToken) == "" {
		return Verdict{Check: CheckCaptcha, Passed: false, Reason: "captcha token missing"}
	}

	resp, err := c.verifier.Verify(ctx, sub.CaptchaToken, sub.SourceIP)
	if err != nil {
		c.logger.Error("captcha verification unavailable", "error", err)
		if c.onUnavailable != nil {
			c.onUnavailable()
		}
		// Fail open on verifier outage.
		return Verdict{Check: CheckCaptcha, Passed: true, Reason: "verifier unavailable"}
	}

	if !resp.Success {
		return Verdict{
			Check:  CheckCaptcha,
			Passed: false,
			Reason: fmt.Sprintf("verification failed: %s", strings.Join(resp.ErrorCodes, ",")),
		}
	}
	if resp.Score < c.minScore {
		return Verdict{
			Check:  CheckCaptcha,
			Passed: false,
			Reason: fmt.Sprintf("score %.2f below threshold %.2f", resp.Score, c.minScore),
		}
	}
	return Verdict{Check: CheckCaptcha, Passed: true}
}

func (c *CaptchaCheck) RejectionMessage() string {
	return "We couldn't verify your submission. Please try again later."
}
