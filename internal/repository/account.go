package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(a *models.Account) error {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO accounts (id, display_name, email_address, smtp_host, smtp_port, smtp_username, smtp_password, use_ssl, use_tls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DisplayName, a.EmailAddress, a.SMTPHost, a.SMTPPort, a.SMTPUsername, a.SMTPPassword, a.UseSSL, a.UseTLS, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID returns an account by ID, or nil if not found
func (r *AccountRepository) GetByID(id string) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRow(`
		SELECT id, display_name, email_address, smtp_host, smtp_port, smtp_username, smtp_password, use_ssl, use_tls, created_at, updated_at
		FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.DisplayName, &a.EmailAddress, &a.SMTPHost, &a.SMTPPort, &a.SMTPUsername, &a.SMTPPassword, &a.UseSSL, &a.UseTLS, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all accounts ordered by display name
func (r *AccountRepository) List() ([]models.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, display_name, email_address, smtp_host, smtp_port, smtp_username, smtp_password, use_ssl, use_tls, created_at, updated_at
		FROM accounts ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		err := rows.Scan(&a.ID, &a.DisplayName, &a.EmailAddress, &a.SMTPHost, &a.SMTPPort, &a.SMTPUsername, &a.SMTPPassword, &a.UseSSL, &a.UseTLS, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// Update updates an account
func (r *AccountRepository) Update(a *models.Account) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE accounts SET display_name = ?, email_address = ?, smtp_host = ?, smtp_port = ?, smtp_username = ?, smtp_password = ?, use_ssl = ?, use_tls = ?, updated_at = ?
		WHERE id = ?`,
		a.DisplayName, a.EmailAddress, a.SMTPHost, a.SMTPPort, a.SMTPUsername, a.SMTPPassword, a.UseSSL, a.UseTLS, a.UpdatedAt, a.ID,
	)
	return err
}

// Delete deletes an account
func (r *AccountRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	return err
}

// Count returns the number of accounts
func (r *AccountRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&n)
	return n, err
}
