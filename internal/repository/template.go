package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new template
func (r *TemplateRepository) Create(t *models.Template) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO templates (id, name, subject, body_html, body_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Subject, t.BodyHTML, t.BodyText, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetByID returns a template by ID, or nil if not found
func (r *TemplateRepository) GetByID(id string) (*models.Template, error) {
	t := &models.Template{}
	var bodyText sql.NullString
	err := r.db.QueryRow(`
		SELECT id, name, subject, body_html, body_text, created_at, updated_at
		FROM templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.BodyHTML, &bodyText, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bodyText.Valid {
		t.BodyText = bodyText.String
	}
	return t, nil
}

// List returns all templates ordered by name
func (r *TemplateRepository) List() ([]models.Template, error) {
	rows, err := r.db.Query(`
		SELECT id, name, subject, body_html, body_text, created_at, updated_at
		FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		var bodyText sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.BodyHTML, &bodyText, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if bodyText.Valid {
			t.BodyText = bodyText.String
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// Update updates a template
func (r *TemplateRepository) Update(t *models.Template) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE templates SET name = ?, subject = ?, body_html = ?, body_text = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Subject, t.BodyHTML, t.BodyText, t.UpdatedAt, t.ID,
	)
	return err
}

// Delete deletes a template
func (r *TemplateRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM templates WHERE id = ?", id)
	return err
}

// Count returns the number of templates
func (r *TemplateRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&n)
	return n, err
}
