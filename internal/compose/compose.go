// Package compose expands a manual send submission into queued messages.
// A submission addresses a recipient list and optionally carries a JSON
// sequence of follow-up steps; the result is one queued message per
// (step, recipient) pair.
package compose

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailward/mailward/internal/metrics"
	"github.com/mailward/mailward/internal/models"
	"github.com/mailward/mailward/internal/repository"
	"github.com/mailward/mailward/internal/sequence"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNoRecipients    = errors.New("at least one recipient is required")
	ErrNoContent       = errors.New("subject and body are required")
)

// Request is one manual compose submission.
type Request struct {
	AccountID  string
	Recipients []string
	Subject    string
	BodyHTML   string
	BodyText   string
	// Steps is an optional raw JSON sequence; when empty or malformed
	// the submission becomes a single immediate send.
	Steps string
	// SendAt is the base send time; zero means now.
	SendAt time.Time
}

// Service expands compose submissions into the delivery queue.
type Service struct {
	logger   *slog.Logger
	accounts *repository.AccountRepository
	queue    *repository.QueueRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(db *sql.DB, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		logger:   logger.With("component", "compose"),
		accounts: repository.NewAccountRepository(db),
		queue:    repository.NewQueueRepository(db),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// stepMetadata records which sequence step produced a queued message.
type stepMetadata struct {
	StepIndex   int    `json:"step_index"`
	OffsetType  string `json:"offset_type"`
	OffsetValue int    `json:"offset_value,omitempty"`
}

// Compose plans the sequence and enqueues one message per step and
// recipient. Send times are computed once per step and shared by all of
// that step's recipients.
func (s *Service) Compose(req Request) ([]models.QueuedMessage, error) {
	if len(req.Recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if req.Subject == "" || req.BodyHTML == "" {
		return nil, ErrNoContent
	}

	account, err := s.accounts.GetByID(req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	base := req.SendAt
	if base.IsZero() {
		base = s.now()
	}

	steps := sequence.Plan(req.Steps, req.Subject, req.BodyHTML)
	times := sequence.SendTimes(steps, base)

	created := make([]models.QueuedMessage, 0, len(steps)*len(req.Recipients))
	for i, step := range steps {
		meta, err := json.Marshal(stepMetadata{
			StepIndex:   i,
			OffsetType:  step.OffsetType,
			OffsetValue: step.OffsetValue,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode step metadata: %w", err)
		}

		for _, recipient := range req.Recipients {
			msg := &models.QueuedMessage{
				AccountID:    account.ID,
				FromAddress:  account.EmailAddress,
				ToAddress:    recipient,
				Subject:      step.Subject,
				BodyHTML:     step.Body,
				BodyText:     req.BodyText,
				ScheduledFor: times[i],
				Status:       models.StatusQueued,
				Source:       models.SourceManual,
				Metadata:     string(meta),
			}
			if err := s.queue.Create(msg); err != nil {
				return created, fmt.Errorf("failed to enqueue message for %s: %w", recipient, err)
			}
			created = append(created, *msg)
			s.metrics.MessagesEnqueuedTotal.WithLabelValues(models.SourceManual).Inc()
		}
	}

	s.logger.Info("compose expanded",
		"account_id", account.ID,
		"steps", len(steps),
		"recipients", len(req.Recipients),
		"messages", len(created),
	)
	return created, nil
}
