package notifications

import (
	"github.com/rs/zerolog/log"
)

// MailData carries one outbound email.
type MailData struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers email. Implementations must not block the caller for
// longer than a local enqueue.
type Mailer interface {
	SendEmail(mail MailData)
}

// LogMailer writes outbound mail to the structured log. It stands in until
// an SMTP or provider integration is configured.
type LogMailer struct{}

func (LogMailer) SendEmail(mail MailData) {
	log.Info().
		Str("to", mail.To).
		Str("subject", mail.Subject).
		Msg("Email dispatched")
}
