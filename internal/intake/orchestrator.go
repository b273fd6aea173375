package intake

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentgrid/intake-service/internal/observability/metrics"
	"github.com/talentgrid/intake-service/internal/ratelimit"
	"github.com/talentgrid/intake-service/internal/security"
	"github.com/talentgrid/intake-service/internal/spam"
	"github.com/talentgrid/intake-service/internal/submissions"
	"github.com/talentgrid/intake-service/pkg/logging"
)

var tracer = otel.Tracer("github.com/talentgrid/intake-service/internal/intake")

// State is a stage of the submission pipeline. Rejected, Failed, and
// Completed are terminal.
type State string

const (
	StateReceived     State = "received"
	StateValidating   State = "validating"
	StateSpamChecking State = "spam_checking"
	StatePersisting   State = "persisting"
	StateNotifying    State = "notifying"
	StateCompleted    State = "completed"
	StateRejected     State = "rejected"
	StateFailed       State = "failed"
)

// ErrorKind is the machine-readable classification returned to clients on
// non-success paths.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindSecurity     ErrorKind = "security"
	ErrorKindSpam         ErrorKind = "spam"
	ErrorKindRateLimited  ErrorKind = "rate_limited"
	ErrorKindPersistence  ErrorKind = "persistence"
	ErrorKindNotification ErrorKind = "notification_failed"
)

const (
	msgCompleted = "Thanks for reaching out. We'll get back to you within one business day."
	// msgCompletedDegraded signals the submission is saved even though the
	// team was not emailed about it.
	msgCompletedDegraded = "Your message has been saved. Our team notification is delayed, so a reply may take a little longer than usual."
	msgSessionExpired    = "Your session has expired. Please reload the page and try again."
	msgPersistFailed     = "We couldn't save your message right now. Please try again in a few minutes."
)

// Outcome is the terminal result of processing one submission. Message is
// always safe to show to the visitor.
type Outcome struct {
	State        State
	Degraded     bool
	Message      string
	ErrorKind    ErrorKind
	SubmissionID string
}

// Accepted reports whether the submission was durably stored.
func (o Outcome) Accepted() bool {
	return o.State == StateCompleted
}

// Notifier delivers the team notification for a stored submission.
type Notifier interface {
	NotifySubmission(ctx context.Context, sub *submissions.Submission) error
}

// AuditLog records pipeline outcomes. All methods take the hashed source
// address, never the raw one.
type AuditLog interface {
	LogAccepted(ctx context.Context, submissionID, sourceIPHash string) error
	LogRejectedValidation(ctx context.Context, reason, sourceIPHash string) error
	LogRejectedSpam(ctx context.Context, checkName, reason, sourceIPHash string) error
	LogRejectedCSRF(ctx context.Context, reason, sourceIPHash string) error
	LogPersistFailed(ctx context.Context, reason, sourceIPHash string) error
	LogNotifyFailed(ctx context.Context, submissionID, reason string) error
}

// Orchestrator drives a submission through token check, validation, the
// spam chain, persistence, and notification. Each call is independent;
// the only shared state is the rate-limit counter behind the spam chain.
type Orchestrator struct {
	tokens   *security.TokenAuthority
	limits   Limits
	chain    *spam.Chain
	repo     submissions.Repository
	notifier Notifier
	audit    AuditLog
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// OrchestratorConfig wires the pipeline dependencies. Tokens, Audit, and
// Metrics may be nil; Chain, Repo, and Notifier must not be.
type OrchestratorConfig struct {
	Tokens   *security.TokenAuthority
	Limits   Limits
	Chain    *spam.Chain
	Repo     submissions.Repository
	Notifier Notifier
	Audit    AuditLog
	Metrics  *metrics.IntakeMetrics
	Logger   *logging.Logger
}

// NewOrchestrator creates the submission pipeline.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	if cfg.Audit == nil {
		cfg.Audit = noopAudit{}
	}
	return &Orchestrator{
		tokens:   cfg.Tokens,
		limits:   cfg.Limits,
		chain:    cfg.Chain,
		repo:     cfg.Repo,
		notifier: cfg.Notifier,
		audit:    cfg.Audit,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Process runs one submission to a terminal state. It never returns an
// error: every failure mode maps to an Outcome the handler can render.
func (o *Orchestrator) Process(ctx context.Context, req *SubmissionRequest) (outcome Outcome) {
	ctx, span := tracer.Start(ctx, "intake.process")
	start := o.now()
	defer func() {
		o.metrics.ObserveProcessingLatency(o.now().Sub(start).Seconds())
		span.SetAttributes(
			attribute.String("intake.state", string(outcome.State)),
			attribute.Bool("intake.degraded", outcome.Degraded),
		)
		span.End()
	}()

	ipHash := ratelimit.IdentityKey(req.SourceIP)

	// Token check happens before anything else touches the request.
	if o.tokens != nil {
		if err := o.tokens.Verify(req.CSRFToken, req.PageID); err != nil {
			o.logger.Warn("submission rejected: token check failed", "error", err, "page_id", req.PageID)
			o.auditErr(o.audit.LogRejectedCSRF(ctx, err.Error(), ipHash))
			o.metrics.ObserveSubmission("rejected_csrf")
			return Outcome{
				State:     StateRejected,
				Message:   msgSessionExpired,
				ErrorKind: ErrorKindSecurity,
			}
		}
	}

	// Validating.
	if err := Validate(req, o.limits); err != nil {
		o.logger.Info("submission rejected: validation", "error", err)
		o.auditErr(o.audit.LogRejectedValidation(ctx, err.Error(), ipHash))
		o.metrics.ObserveSubmission("rejected_validation")
		return Outcome{
			State:     StateRejected,
			Message:   err.Error(),
			ErrorKind: ErrorKindValidation,
		}
	}

	// SpamChecking.
	verdicts, failed := o.chain.Evaluate(ctx, &spam.Submission{
		SourceIP:      req.SourceIP,
		Honeypot:      req.Honeypot,
		FormStartTime: req.FormStartTime,
		CaptchaToken:  req.CaptchaToken,
	})
	if failed != nil {
		verdict := verdicts[len(verdicts)-1]
		o.auditErr(o.audit.LogRejectedSpam(ctx, verdict.Check, verdict.Reason, ipHash))
		o.metrics.ObserveSpamRejection(verdict.Check)
		o.metrics.ObserveSubmission("rejected_spam")

		kind := ErrorKindSpam
		if failed.Name() == spam.CheckRateLimit {
			kind = ErrorKindRateLimited
		}
		return Outcome{
			State:     StateRejected,
			Message:   failed.RejectionMessage(),
			ErrorKind: kind,
		}
	}

	// Persisting.
	sub, err := o.repo.Create(ctx, &submissions.CreateSubmissionRequest{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		Subject:           req.Subject,
		Message:           req.Message,
		PrivacyConsent:    req.PrivacyConsent,
		NewsletterConsent: req.NewsletterConsent,
		PageID:            req.PageID,
		UserAgent:         req.UserAgent,
		Referrer:          req.Referrer,
		SourceIP:          req.SourceIP,
	})
	if err != nil {
		o.logger.Error("submission storage failed", "error", err)
		o.auditErr(o.audit.LogPersistFailed(ctx, err.Error(), ipHash))
		o.metrics.ObserveSubmission("failed")
		return Outcome{
			State:     StateFailed,
			Message:   msgPersistFailed,
			ErrorKind: ErrorKindPersistence,
		}
	}

	// Notifying. The record is durable at this point, so a notify failure
	// degrades the outcome instead of failing it.
	if err := o.notifier.NotifySubmission(ctx, sub); err != nil {
		o.logger.Error("submission notification failed", "error", err, "submission_id", sub.ID)
		o.auditErr(o.audit.LogNotifyFailed(ctx, sub.ID, err.Error()))
		o.metrics.ObserveSubmission("completed_degraded")
		return Outcome{
			State:        StateCompleted,
			Degraded:     true,
			Message:      msgCompletedDegraded,
			ErrorKind:    ErrorKindNotification,
			SubmissionID: sub.ID,
		}
	}

	o.auditErr(o.audit.LogAccepted(ctx, sub.ID, ipHash))
	o.metrics.ObserveSubmission("completed")
	o.logger.Info("submission completed", "submission_id", sub.ID, "subject", sub.Subject)
	return Outcome{
		State:        StateCompleted,
		Message:      msgCompleted,
		SubmissionID: sub.ID,
	}
}

// auditErr logs audit write failures; they never change the outcome.
func (o *Orchestrator) auditErr(err error) {
	if err != nil {
		o.logger.Warn("audit write failed", "error", err)
	}
}

type noopAudit struct{}

func (noopAudit) LogAccepted(context.Context, string, string) error { return nil }

func (noopAudit) LogRejectedValidation(context.Context, string, string) error { return nil }

func (noopAudit) LogRejectedSpam(context.Context, string, string, string) error { return nil }

func (noopAudit) LogRejectedCSRF(context.Context, string, string) error { return nil }

func (noopAudit) LogPersistFailed(context.Context, string, string) error { return nil }

func (noopAudit) LogNotifyFailed(context.Context, string, string) error { return nil }
