package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(c *models.Campaign) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO campaigns (id, name, account_id, template_id, schedule_type, schedule_config, target_tags, active, last_run_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.AccountID, c.TemplateID, c.ScheduleType, c.ScheduleConfig, c.TargetTags, c.Active, c.LastRunAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID returns a campaign by ID, or nil if not found
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	c := &models.Campaign{}
	var lastRunAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, name, account_id, template_id, schedule_type, schedule_config, target_tags, active, last_run_at, created_at, updated_at
		FROM campaigns WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.AccountID, &c.TemplateID, &c.ScheduleType, &c.ScheduleConfig, &c.TargetTags, &c.Active, &lastRunAt, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastRunAt.Valid {
		t := lastRunAt.Time
		c.LastRunAt = &t
	}
	return c, nil
}

// List returns campaigns with optional filtering
func (r *CampaignRepository) List(filter models.CampaignFilter) ([]models.Campaign, error) {
	query := `
		SELECT id, name, account_id, template_id, schedule_type, schedule_config, target_tags, active, last_run_at, created_at, updated_at
		FROM campaigns WHERE 1=1`
	args := []any{}

	if filter.Active != nil {
		query += " AND active = ?"
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		query += " AND name LIKE ?"
		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY name"

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

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		var lastRunAt sql.NullTime
		err := rows.Scan(&c.ID, &c.Name, &c.AccountID, &c.TemplateID, &c.ScheduleType, &c.ScheduleConfig, &c.TargetTags, &c.Active, &lastRunAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if lastRunAt.Valid {
			t := lastRunAt.Time
			c.LastRunAt = &t
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

// ListActive returns all active campaigns
func (r *CampaignRepository) ListActive() ([]models.Campaign, error) {
	active := true
	return r.List(models.CampaignFilter{Active: &active})
}

// Update updates a campaign
func (r *CampaignRepository) Update(c *models.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE campaigns SET name = ?, account_id = ?, template_id = ?, schedule_type = ?, schedule_config = ?, target_tags = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.AccountID, c.TemplateID, c.ScheduleType, c.ScheduleConfig, c.TargetTags, c.Active, c.UpdatedAt, c.ID,
	)
	return err
}

// SetActive activates or deactivates a campaign
func (r *CampaignRepository) SetActive(id string, active bool) error {
	_, err := r.db.Exec("UPDATE campaigns SET active = ?, updated_at = ? WHERE id = ?",
		active, time.Now().UTC(), id)
	return err
}

// MarkRun stamps the campaign's last run time. Called after every run
// attempt, including runs that matched zero contacts or were skipped for
// a missing account or template.
func (r *CampaignRepository) MarkRun(id string, runAt time.Time) error {
	_, err := r.db.Exec("UPDATE campaigns SET last_run_at = ?, updated_at = ? WHERE id = ?",
		runAt, time.Now().UTC(), id)
	return err
}

// Delete deletes a campaign
func (r *CampaignRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM campaigns WHERE id = ?", id)
	return err
}

// Count returns the number of campaigns
func (r *CampaignRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM campaigns").Scan(&n)
	return n, err
}
