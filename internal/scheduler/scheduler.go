// Package scheduler drives the two periodic processes at the core of
// mailward: the campaign runner, which turns due campaigns into queued
// messages, and the delivery processor, which drives queued messages
// through the send state machine.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/mailward/mailward/internal/mailer"
	"github.com/mailward/mailward/internal/metrics"
	"github.com/mailward/mailward/internal/models"
	"github.com/mailward/mailward/internal/repository"
)

// Config holds scheduler configuration
type Config struct {
	CampaignInterval  time.Duration
	DeliveryInterval  time.Duration
	RequeueStuckAfter time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		CampaignInterval:  60 * time.Second,
		DeliveryInterval:  60 * time.Second,
		RequeueStuckAfter: 15 * time.Minute,
	}
}

// Scheduler owns the periodic campaign and delivery ticks. It is built
// explicitly from its collaborators and started and stopped by the
// caller; there is no process-global instance.
type Scheduler struct {
	cfg       Config
	logger    *slog.Logger
	campaigns *repository.CampaignRepository
	contacts  *repository.ContactRepository
	accounts  *repository.AccountRepository
	templates *repository.TemplateRepository
	queue     *repository.QueueRepository
	transport mailer.Transport
	metrics   *metrics.Metrics

	// now is the clock; tests fix it.
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new scheduler
func New(db *sql.DB, transport mailer.Transport, m *metrics.Metrics, logger *slog.Logger, cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cfg:       cfg,
		logger:    logger.With("component", "scheduler"),
		campaigns: repository.NewCampaignRepository(db),
		contacts:  repository.NewContactRepository(db),
		accounts:  repository.NewAccountRepository(db),
		templates: repository.NewTemplateRepository(db),
		queue:     repository.NewQueueRepository(db),
		transport: transport,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start requeues messages left behind by a crashed process, then starts
// the two periodic loops.
func (s *Scheduler) Start() {
	s.recoverStuckSending()

	s.wg.Add(2)
	go s.loop("campaigns", s.cfg.CampaignInterval, s.RunDue)
	go s.loop("delivery", s.cfg.DeliveryInterval, s.ProcessDue)

	s.logger.Info("scheduler started",
		"campaign_interval", s.cfg.CampaignInterval,
		"delivery_interval", s.cfg.DeliveryInterval,
	)
}

// Stop stops the scheduler gracefully. A tick already in flight runs to
// completion.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// loop drives one tick function on a fixed interval. Ticks run strictly
// sequentially within a loop: a slow tick delays the next one instead of
// overlapping it.
func (s *Scheduler) loop(name string, interval time.Duration, tick func(time.Time) error) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runTick(name, tick)
		}
	}
}

// runTick runs one tick, containing any failure: errors are logged and
// panics recovered so a bad tick never takes down the periodic driver.
func (s *Scheduler) runTick(name string, tick func(time.Time) error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick panicked", "tick", name, "panic", r)
		}
		s.metrics.TickDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := tick(start); err != nil {
		s.logger.Error("tick failed", "tick", name, "error", err)
	}
}

// recoverStuckSending is the startup sweep for the crash-recovery gap: a
// process killed mid-send leaves messages in "sending" forever. Anything
// in "sending" older than the grace period goes back to "queued".
func (s *Scheduler) recoverStuckSending() {
	if s.cfg.RequeueStuckAfter <= 0 {
		return
	}

	cutoff := s.now().Add(-s.cfg.RequeueStuckAfter)
	n, err := s.queue.RequeueStuckSending(cutoff)
	if err != nil {
		s.logger.Error("failed to requeue stuck messages", "error", err)
		return
	}
	if n > 0 {
		s.logger.Warn("requeued messages stuck in sending", "count", n)
	}
}

func (s *Scheduler) updateQueueDepth() {
	stats, err := s.queue.Stats()
	if err != nil {
		s.logger.Error("failed to read queue stats", "error", err)
		return
	}
	s.metrics.QueueDepth.WithLabelValues(models.StatusQueued).Set(float64(stats.Queued))
	s.metrics.QueueDepth.WithLabelValues(models.StatusSending).Set(float64(stats.Sending))
	s.metrics.QueueDepth.WithLabelValues(models.StatusSent).Set(float64(stats.Sent))
	s.metrics.QueueDepth.WithLabelValues(models.StatusFailed).Set(float64(stats.Failed))
	s.metrics.QueueDepth.WithLabelValues(models.StatusCancelled).Set(float64(stats.Cancelled))
}
