package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create creates a new contact
func (r *ContactRepository) Create(c *models.Contact) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO contacts (id, email, name, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Email, c.Name, c.Tags, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetByID returns a contact by ID, or nil if not found
func (r *ContactRepository) GetByID(id string) (*models.Contact, error) {
	c := &models.Contact{}
	err := r.db.QueryRow(`
		SELECT id, email, name, tags, created_at, updated_at
		FROM contacts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Email, &c.Name, &c.Tags, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns contacts with optional filtering
func (r *ContactRepository) List(filter models.ContactFilter) ([]models.Contact, error) {
	query := `
		SELECT id, email, name, tags, created_at, updated_at
		FROM contacts WHERE 1=1`
	args := []any{}

	if filter.Search != "" {
		query += " AND (email LIKE ? OR name LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Tag != "" {
		query += " AND tags LIKE ?"
		args = append(args, "%"+filter.Tag+"%")
	}

	query += " ORDER BY email"

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

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Tags, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// Update updates a contact
func (r *ContactRepository) Update(c *models.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE contacts SET email = ?, name = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		c.Email, c.Name, c.Tags, c.UpdatedAt, c.ID,
	)
	return err
}

// Delete deletes a contact
func (r *ContactRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM contacts WHERE id = ?", id)
	return err
}

// Count returns the number of contacts
func (r *ContactRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&n)
	return n, err
}
