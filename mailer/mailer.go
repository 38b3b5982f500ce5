// Package mailer is the notification e-mail capability. The workflow
// decides whether a send failure matters; this package just sends.
package mailer

import gomail "gopkg.in/gomail.v2"

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP sends through a plain SMTP relay via gomail.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	return &SMTP{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (m *SMTP) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// Disabled swallows every send; used when SMTP is not configured.
type Disabled struct{}

func (Disabled) Send(string, string, string) error { return nil }
