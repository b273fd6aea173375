package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentgrid/intake-service/internal/submissions"
	"github.com/talentgrid/intake-service/pkg/logging"
)

// Service sends the new-submission summary to the configured recipients.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, recipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		recipients: recipients,
		logger:     logger,
	}
}

// NotifySubmission emails a structured summary of an accepted submission.
// An error means no recipient got the message; partial delivery counts as
// sent.
func (s *Service) NotifySubmission(ctx context.Context, sub *submissions.Submission) error {
	if s.email == nil || len(s.recipients) == 0 {
		s.logger.Debug("notify: no email sender or recipients configured, skipping")
		return nil
	}

	subject := fmt.Sprintf("New contact form submission: %s (%s)", sub.Name, sub.Subject)
	body := s.formatBody(sub)
	html := s.formatHTML(sub)

	sent := 0
	var lastErr error
	for _, recipient := range s.recipients {
		msg := EmailMessage{
			To:      recipient,
			Subject: subject,
			Body:    body,
			HTML:    html,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send submission email", "error", err, "to", recipient, "submission_id", sub.ID)
			lastErr = err
			continue
		}
		sent++
		s.logger.Info("notify: submission email sent", "to", recipient, "submission_id", sub.ID)
	}

	if sent == 0 && lastErr != nil {
		return fmt.Errorf("notify: all recipients failed: %w", lastErr)
	}
	return nil
}

func (s *Service) formatBody(sub *submissions.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New enquiry received via the website contact form.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	}
	if sub.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", sub.Company)
	}
	fmt.Fprintf(&b, "Subject: %s\n", sub.Subject)
	if sub.NewsletterConsent {
		fmt.Fprintf(&b, "Newsletter: opted in\n")
	}
	fmt.Fprintf(&b, "Received: %s\n", sub.CreatedAt.Format("January 2, 2006 at 15:04 MST"))
	if sub.PageID != "" {
		fmt.Fprintf(&b, "Page: %s\n", sub.PageID)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", sub.Message)
	fmt.Fprintf(&b, "\nReference: %s\n", sub.ID)
	return b.String()
}

func (s *Service) formatHTML(sub *submissions.Submission) string {
	row := func(label, value string) string {
		if value == "" {
			return ""
		}
		return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, htmlEscape(value))
	}

	newsletter := ""
	if sub.NewsletterConsent {
		newsletter = row("Newsletter", "opted in")
	}

	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #2563eb;">New contact form submission</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
%s%s%s%s%s%s%s
</table>
<p style="background: #f8fafc; padding: 12px; border-radius: 8px; border-left: 4px solid #2563eb; white-space: pre-wrap;">%s</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">Reference %s, received %s</p>
</div>`,
		row("Name", sub.Name),
		row("Email", sub.Email),
		row("Phone", sub.Phone),
		row("Company", sub.Company),
		row("Subject", sub.Subject),
		newsletter,
		row("Page", sub.PageID),
		htmlEscape(sub.Message),
		htmlEscape(sub.ID),
		sub.CreatedAt.Format("January 2, 2006 15:04 MST"),
	)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
