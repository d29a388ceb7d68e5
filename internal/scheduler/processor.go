package scheduler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mailward/mailward/internal/models"
)

// ProcessDue is the delivery processor tick: it claims every queued
// message due at or before now and drives each one to sent or failed.
// Messages are isolated from each other; one failure never aborts the
// rest of the tick.
func (s *Scheduler) ProcessDue(now time.Time) error {
	due, err := s.queue.GetDue(now)
	if err != nil {
		return fmt.Errorf("failed to query due messages: %w", err)
	}

	for i := range due {
		s.processMessage(&due[i])
	}

	s.updateQueueDepth()
	return nil
}

// processMessage drives one message through queued → sending → sent|failed.
func (s *Scheduler) processMessage(m *models.QueuedMessage) {
	logger := s.logger.With("message_id", m.ID, "to", m.ToAddress)

	claimed, err := s.queue.Claim(m.ID)
	if err != nil {
		logger.Error("failed to claim message", "error", err)
		return
	}
	if !claimed {
		// Another processor took it between the due query and now.
		return
	}

	logger.Info("processing queued message")

	account, err := s.accounts.GetByID(m.AccountID)
	if err != nil {
		s.failMessage(m.ID, fmt.Sprintf("failed to load account: %v", err), logger)
		return
	}
	if account == nil {
		s.failMessage(m.ID, "Account not found", logger)
		return
	}

	// A single record may carry several comma-separated addresses.
	recipients := splitAddresses(m.ToAddress)
	if len(recipients) == 0 {
		recipients = []string{m.ToAddress}
	}

	if err := s.transport.Send(account, recipients, m.Subject, m.BodyHTML, m.BodyText); err != nil {
		s.failMessage(m.ID, err.Error(), logger)
		return
	}

	if err := s.queue.MarkSent(m.ID, s.now()); err != nil {
		logger.Error("failed to mark message sent", "error", err)
		return
	}
	s.metrics.MessagesSentTotal.Inc()
	logger.Info("message sent")
}

func (s *Scheduler) failMessage(id, reason string, logger *slog.Logger) {
	if err := s.queue.MarkFailed(id, reason); err != nil {
		logger.Error("failed to mark message failed", "error", err)
		return
	}
	s.metrics.MessagesFailedTotal.Inc()
	logger.Error("message delivery failed", "reason", reason)
}

func splitAddresses(s string) []string {
	out := []string{}
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
