package mail

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"

	"github.com/Daryna22/contacts-service/internal/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers confirmation mail. Failures are the caller's problem to
// log and swallow: identity state never depends on mail delivery.
type Sender interface {
	SendConfirmation(ctx context.Context, email, username, link string) error
}

//go:embed templates/confirmation.html
var confirmationHTML string

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationHTML))

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	d := gomail.NewDialer(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword)
	d.SSL = true

	return &SMTPSender{dialer: d, from: cfg.MailFrom}
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, email, username, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := confirmationTmpl.Execute(&body, map[string]string{
		"Username": username,
		"Link":     link,
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Confirm your email")
	m.SetBody("text/html", body.String())

	return s.dialer.DialAndSend(m)
}
