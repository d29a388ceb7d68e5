package models

import "time"

// Account holds the SMTP identity and credentials used to deliver mail.
type Account struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	EmailAddress string    `json:"email_address"`
	SMTPHost     string    `json:"smtp_host"`
	SMTPPort     int       `json:"smtp_port"`
	SMTPUsername string    `json:"smtp_username"`
	SMTPPassword string    `json:"-"` // TODO: store encrypted
	UseSSL       bool      `json:"use_ssl"`
	UseTLS       bool      `json:"use_tls"` // STARTTLS; ignored when UseSSL is set
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
