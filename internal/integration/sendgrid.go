package integration

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	key  string
	from string
}

// NewMailer returns a Mailer.  An empty API key leaves it disabled.
func NewMailer(key, from string) *Mailer {
	return &Mailer{key: key, from: from}
}

// Enabled reports whether email can be sent.
func (m *Mailer) Enabled() bool { return m.key != "" }

// Send delivers a plain-text email to one recipient.
func (m *Mailer) Send(toName, toEmail, subject, body string) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	from := mail.NewEmail("", m.from)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, body, "")
	client := sendgrid.NewSendClient(m.key)
	resp, err := client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
