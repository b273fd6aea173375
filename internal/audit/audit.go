// Package audit records an immutable trail of intake processing outcomes.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of intake audit event.
type EventType string

const (
	// EventAccepted is logged when a submission completes processing.
	EventAccepted EventType = "intake.accepted"
	// EventRejectedValidation is logged when a submission fails field validation.
	EventRejectedValidation EventType = "intake.rejected_validation"
	// EventRejectedSpam is logged when a spam defense rejects a submission.
	EventRejectedSpam EventType = "intake.rejected_spam"
	// EventRejectedCSRF is logged when the form token check fails.
	EventRejectedCSRF EventType = "intake.rejected_csrf"
	// EventPersistFailed is logged when storing a submission fails.
	EventPersistFailed EventType = "intake.persist_failed"
	// EventNotifyFailed is logged when a submission is stored but the
	// notification email could not be sent.
	EventNotifyFailed EventType = "intake.notify_failed"
)

// Event represents an immutable intake audit record. SourceIPHash is the
// hashed form of the client address; raw addresses are never stored.
type Event struct {
	ID           string          `json:"id"`
	EventType    EventType       `json:"event_type"`
	SubmissionID string          `json:"submission_id,omitempty"`
	CheckName    string          `json:"check_name,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	SourceIPHash string          `json:"source_ip_hash,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Service handles intake audit logging.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// LogEvent records an intake audit event.
func (s *Service) LogEvent(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO intake_audit_events (
			id, event_type, submission_id, check_name,
			reason, source_ip_hash, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		nullString(event.SubmissionID),
		nullString(event.CheckName),
		nullString(event.Reason),
		nullString(event.SourceIPHash),
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to log event: %w", err)
	}

	return nil
}

// LogAccepted logs a completed submission.
func (s *Service) LogAccepted(ctx context.Context, submissionID, sourceIPHash string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventAccepted,
		SubmissionID: submissionID,
		SourceIPHash: sourceIPHash,
	})
}

// LogRejectedValidation logs a submission rejected by field validation.
func (s *Service) LogRejectedValidation(ctx context.Context, reason, sourceIPHash string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventRejectedValidation,
		Reason:       reason,
		SourceIPHash: sourceIPHash,
	})
}

// LogRejectedSpam logs a submission rejected by a spam defense.
func (s *Service) LogRejectedSpam(ctx context.Context, checkName, reason, sourceIPHash string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventRejectedSpam,
		CheckName:    checkName,
		Reason:       reason,
		SourceIPHash: sourceIPHash,
	})
}

// LogRejectedCSRF logs a submission with a missing or invalid form token.
func (s *Service) LogRejectedCSRF(ctx context.Context, reason, sourceIPHash string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventRejectedCSRF,
		Reason:       reason,
		SourceIPHash: sourceIPHash,
	})
}

// LogPersistFailed logs a storage failure.
func (s *Service) LogPersistFailed(ctx context.Context, reason, sourceIPHash string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventPersistFailed,
		Reason:       reason,
		SourceIPHash: sourceIPHash,
	})
}

// LogNotifyFailed logs a notification failure for a stored submission.
func (s *Service) LogNotifyFailed(ctx context.Context, submissionID, reason string) error {
	return s.LogEvent(ctx, Event{
		EventType:    EventNotifyFailed,
		SubmissionID: submissionID,
		Reason:       reason,
	})
}

// QueryEvents retrieves audit events with filters.
func (s *Service) QueryEvents(ctx context.Context, filter Filter) ([]Event, error) {
	query := `
		SELECT id, event_type, submission_id, check_name,
			   reason, source_ip_hash, details, created_at
		FROM intake_audit_events
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if filter.SubmissionID != "" {
		query += fmt.Sprintf(" AND submission_id = $%d", argIdx)
		args = append(args, filter.SubmissionID)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var subID, checkName, reason, ipHash sql.NullString
		err := rows.Scan(
			&e.ID, &e.EventType, &subID, &checkName,
			&reason, &ipHash, &e.Details, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("audit: failed to scan event: %w", err)
		}
		e.SubmissionID = subID.String
		e.CheckName = checkName.String
		e.Reason = reason.String
		e.SourceIPHash = ipHash.String
		events = append(events, e)
	}

	return events, nil
}

// Filter specifies criteria for querying audit events.
type Filter struct {
	EventType    EventType
	SubmissionID string
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
