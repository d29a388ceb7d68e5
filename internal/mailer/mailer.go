// Package mailer delivers rendered messages over SMTP using the
// credentials stored on an account.
package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/mailward/mailward/internal/models"
)

// Transport sends a rendered email. Implementations must not panic; every
// failure surfaces as the returned error.
type Transport interface {
	Send(account *models.Account, recipients []string, subject, bodyHTML, bodyText string) error
}

// SMTP is the gomail-backed Transport.
type SMTP struct {
	timeout time.Duration
	logger  *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *SMTP {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SMTP{
		timeout: timeout,
		logger:  logger.With("component", "mailer"),
	}
}

// Send builds and submits one message. An account with UseSSL dials over
// implicit TLS; otherwise the connection is plain with STARTTLS when
// UseTLS is set.
func (s *SMTP) Send(account *models.Account, recipients []string, subject, bodyHTML, bodyText string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", account.EmailAddress)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	if bodyText != "" {
		m.SetBody("text/plain", bodyText)
		m.AddAlternative("text/html", bodyHTML)
	} else {
		m.SetBody("text/html", bodyHTML)
	}

	d := gomail.NewDialer(account.SMTPHost, account.SMTPPort, account.SMTPUsername, account.SMTPPassword)
	d.SSL = account.UseSSL
	d.TLSConfig = &tls.Config{ServerName: account.SMTPHost}
	if !account.UseSSL && !account.UseTLS {
		// Plain submission without STARTTLS, for local relays.
		d.TLSConfig = nil
	}

	s.logger.Debug("sending email",
		"from", account.EmailAddress,
		"host", account.SMTPHost,
		"recipients", len(recipients),
		"subject", subject,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.DialAndSend(m)
	}()

	// gomail has no dial deadline of its own; bound the whole submission
	// so one slow SMTP endpoint cannot stall a delivery tick.
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp send via %s: %w", account.SMTPHost, err)
		}
		return nil
	case <-time.After(s.timeout):
		return fmt.Errorf("smtp send via %s: timed out after %s", account.SMTPHost, s.timeout)
	}
}
