package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer delivers a welcome message to its recipient
type Mailer interface {
	Send(ctx context.Context, msg Welcome) error
}

// SMTPMailer sends plain-text mail through an SMTP relay
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for addr (host:port). Credentials are optional.
func NewSMTPMailer(addr, user, password, from string) (*SMTPMailer, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_ADDR %q: %w", addr, err)
	}

	m := &SMTPMailer{addr: addr, from: from}
	if user != "" {
		m.auth = smtp.PlainAuth("", user, password, host)
	}
	return m, nil
}

func (m *SMTPMailer) Send(_ context.Context, msg Welcome) error {
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.Email}, composeMail(m.from, msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.Email, err)
	}
	return nil
}

func composeMail(from string, msg Welcome) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return b.Bytes()
}

// LogMailer logs mail instead of sending it
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Welcome) error {
	m.logger.Info("Sending email notification",
		zap.String("user_id", msg.UserID),
		zap.String("to", msg.Email),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
