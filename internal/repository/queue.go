package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueColumns = `id, campaign_id, account_id, from_address, to_address, subject, body_html, body_text, scheduled_for, status, last_error, sent_at, source, metadata, created_at, updated_at`

// Create inserts a new queued message in "queued" status
func (r *QueueRepository) Create(m *models.QueuedMessage) error {
	m.ID = uuid.New().String()
	if m.Status == "" {
		m.Status = models.StatusQueued
	}
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO queued_messages (`+queueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, nullString(m.CampaignID), m.AccountID, m.FromAddress, m.ToAddress, m.Subject, m.BodyHTML, nullString(m.BodyText),
		m.ScheduledFor, m.Status, nullString(m.LastError), m.SentAt, m.Source, nullString(m.Metadata), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create queued message: %w", err)
	}
	return nil
}

// GetByID returns a queued message by ID, or nil if not found
func (r *QueueRepository) GetByID(id string) (*models.QueuedMessage, error) {
	row := r.db.QueryRow(`SELECT `+queueColumns+` FROM queued_messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetDue returns all messages that are queued and due at or before now
func (r *QueueRepository) GetDue(now time.Time) ([]models.QueuedMessage, error) {
	rows, err := r.db.Query(`
		SELECT `+queueColumns+` FROM queued_messages
		WHERE status = ? AND scheduled_for <= ?`,
		models.StatusQueued, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// List returns queued messages with optional filtering, newest schedule first
func (r *QueueRepository) List(filter models.QueueFilter) ([]models.QueuedMessage, error) {
	query := `SELECT ` + queueColumns + ` FROM queued_messages WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.CampaignID != "" {
		query += " AND campaign_id = ?"
		args = append(args, filter.CampaignID)
	}

	query += " ORDER BY scheduled_for DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// Claim transitions a message from "queued" to "sending". It returns false
// when the message was already claimed or is no longer queued, which makes
// concurrent processors safe against double delivery.
func (r *QueueRepository) Claim(id string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.StatusSending, time.Now().UTC(), id, models.StatusQueued,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkSent records a successful delivery
func (r *QueueRepository) MarkSent(id string, sentAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, sent_at = ?, last_error = NULL, updated_at = ?
		WHERE id = ?`,
		models.StatusSent, sentAt, time.Now().UTC(), id,
	)
	return err
}

// MarkFailed records a failed delivery attempt
func (r *QueueRepository) MarkFailed(id string, lastError string) error {
	_, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, last_error = ?, updated_at = ?
		WHERE id = ?`,
		models.StatusFailed, lastError, time.Now().UTC(), id,
	)
	return err
}

// Retry moves a failed message back to queued, clearing its error and
// making it due immediately. Retries are operator-initiated only.
func (r *QueueRepository) Retry(id string, now time.Time) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, last_error = NULL, scheduled_for = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.StatusQueued, now, time.Now().UTC(), id, models.StatusFailed,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Cancel moves a queued message to cancelled
func (r *QueueRepository) Cancel(id string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.StatusCancelled, time.Now().UTC(), id, models.StatusQueued,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RequeueStuckSending moves messages back to queued that have sat in
// "sending" since before the cutoff. A message only stays in "sending"
// across ticks when a previous process crashed mid-send.
func (r *QueueRepository) RequeueStuckSending(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE queued_messages SET status = ?, updated_at = ?
		WHERE status = ? AND updated_at < ?`,
		models.StatusQueued, time.Now().UTC(), models.StatusSending, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOlderThan removes terminal messages last touched before the
// cutoff. updated_at is the time a message reached its terminal status,
// which is what "old" means for cleanup. Used by the cleanup command.
func (r *QueueRepository) DeleteOlderThan(statuses []string, cutoff time.Time) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	args := make([]any, 0, len(statuses)+1)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, cutoff)

	res, err := r.db.Exec(
		"DELETE FROM queued_messages WHERE status IN ("+placeholders+") AND updated_at < ?",
		args...,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns message counts by status
func (r *QueueRepository) Stats() (*models.QueueStats, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM queued_messages GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.QueueStats{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case models.StatusQueued:
			stats.Queued = n
		case models.StatusSending:
			stats.Sending = n
		case models.StatusSent:
			stats.Sent = n
		case models.StatusFailed:
			stats.Failed = n
		case models.StatusCancelled:
			stats.Cancelled = n
		}
		stats.Total += n
	}

	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.QueuedMessage, error) {
	m := &models.QueuedMessage{}
	var campaignID, bodyText, lastError, metadata sql.NullString
	var sentAt sql.NullTime

	err := row.Scan(&m.ID, &campaignID, &m.AccountID, &m.FromAddress, &m.ToAddress, &m.Subject, &m.BodyHTML, &bodyText,
		&m.ScheduledFor, &m.Status, &lastError, &sentAt, &m.Source, &metadata, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if campaignID.Valid {
		m.CampaignID = campaignID.String
	}
	if bodyText.Valid {
		m.BodyText = bodyText.String
	}
	if lastError.Valid {
		m.LastError = lastError.String
	}
	if metadata.Valid {
		m.Metadata = metadata.String
	}
	if sentAt.Valid {
		t := sentAt.Time
		m.SentAt = &t
	}
	return m, nil
}

func collectMessages(rows *sql.Rows) ([]models.QueuedMessage, error) {
	messages := []models.QueuedMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
