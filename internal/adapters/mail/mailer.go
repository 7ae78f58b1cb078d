package mail

import (
	"context"
	"fmt"

	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a single outgoing email.
type Message struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	setMessage(m, s.from, msg)
	return s.dialer.DialAndSend(m)
}

func setMessage(m *gomail.Message, from string, msg Message) {
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	// the last alternative is the preferred one
	switch {
	case msg.HTMLBody != "" && msg.Body != "":
		m.SetBody("text/plain", msg.Body)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.Body)
	}
}

// LogSender only logs outgoing mail. Used when no SMTP host is configured;
// bodies are logged at debug level.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	fields := []zap.Field{zap.String("subject", msg.Subject)}
	for _, to := range msg.To {
		fields = append(fields, lg.Email(to))
	}
	s.log.Info("mail not sent, smtp disabled", fields...)
	// the body carries the verification or reset link; without it no
	// account could be verified while SMTP is off
	s.log.Debug("unsent mail body", zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}
