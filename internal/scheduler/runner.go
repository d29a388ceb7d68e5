package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mailward/mailward/internal/models"
	"github.com/mailward/mailward/internal/render"
	"github.com/mailward/mailward/internal/schedule"
)

// RunDue is the campaign runner tick: it evaluates every active
// campaign's trigger against now and enqueues rendered messages for the
// ones that fire. One campaign's failure never stops the sweep.
func (s *Scheduler) RunDue(now time.Time) error {
	campaigns, err := s.campaigns.ListActive()
	if err != nil {
		return fmt.Errorf("failed to list active campaigns: %w", err)
	}

	for i := range campaigns {
		c := &campaigns[i]
		sched := schedule.Decode(c.ScheduleType, c.ScheduleConfig)
		if _, bad := sched.(schedule.Unrecognized); bad {
			// Misconfiguration is logged but never fatal to the sweep.
			s.logger.Warn("campaign schedule not recognized, will never fire",
				"campaign_id", c.ID,
				"campaign", c.Name,
				"schedule_type", c.ScheduleType,
			)
			continue
		}
		if !sched.ShouldRun(c.LastRunAt, now) {
			continue
		}
		s.runCampaign(c, now)
	}

	return nil
}

// runCampaign materializes one firing campaign into queued messages and
// stamps its last run time. The stamp happens even when zero contacts
// matched, and even when the account or template is missing: a campaign
// that cannot run must not retry every tick.
func (s *Scheduler) runCampaign(c *models.Campaign, now time.Time) {
	logger := s.logger.With("campaign_id", c.ID, "campaign", c.Name)
	logger.Info("running campaign")

	account, err := s.accounts.GetByID(c.AccountID)
	if err != nil {
		logger.Error("failed to load account", "error", err)
		return // storage error: leave unstamped, next tick retries
	}
	template, err := s.templates.GetByID(c.TemplateID)
	if err != nil {
		logger.Error("failed to load template", "error", err)
		return
	}

	if account == nil || template == nil {
		logger.Error("campaign skipped due to missing account or template")
		s.metrics.CampaignsSkippedTotal.Inc()
		s.markRun(c, now, logger)
		return
	}

	targetTags := TagList(c.TargetTags)
	contacts, err := s.contacts.List(models.ContactFilter{})
	if err != nil {
		logger.Error("failed to list contacts", "error", err)
		return
	}

	enqueued := 0
	for i := range contacts {
		contact := &contacts[i]
		if !ContactMatches(contact, targetTags) {
			continue
		}

		subject, bodyHTML := render.Render(template, ContactContext(contact))
		msg := &models.QueuedMessage{
			CampaignID:   c.ID,
			AccountID:    c.AccountID,
			FromAddress:  account.EmailAddress,
			ToAddress:    contact.Email,
			Subject:      subject,
			BodyHTML:     bodyHTML,
			BodyText:     template.BodyText,
			ScheduledFor: now,
			Status:       models.StatusQueued,
			Source:       models.SourceCampaign,
		}
		if err := s.queue.Create(msg); err != nil {
			logger.Error("failed to enqueue message", "contact", contact.Email, "error", err)
			continue
		}
		enqueued++
		s.metrics.MessagesEnqueuedTotal.WithLabelValues(models.SourceCampaign).Inc()
	}

	s.markRun(c, now, logger)
	s.metrics.CampaignsRunTotal.Inc()
	logger.Info("campaign enqueued messages", "count", enqueued)
}

func (s *Scheduler) markRun(c *models.Campaign, now time.Time, logger *slog.Logger) {
	if err := s.campaigns.MarkRun(c.ID, now); err != nil {
		logger.Error("failed to stamp campaign run", "error", err)
	}
}
