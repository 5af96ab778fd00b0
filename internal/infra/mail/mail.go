package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
)

// MailServer sends plain text alerts to the operator list.
type MailServer struct {
	cfg  *MailConfig
	auth smtp.Auth
}

var _ interfaces.Notifier = (*MailServer)(nil)

func NewMailServer(cfg *MailConfig) *MailServer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &MailServer{
		cfg:  cfg,
		auth: auth,
	}
}

// Notify is a no-op without a mail host or operators configured.
func (m *MailServer) Notify(_ context.Context, subject, body string) error {
	if m.cfg.SMTPHost == "" || len(m.cfg.Operators) == 0 {
		slog.Info("operator notification (mail disabled)", "subject", subject, "body", body)
		return nil
	}
	return m.SendMail(m.cfg.Operators, subject, body)
}

func (m *MailServer) SendMail(to []string, subject, body string) (err error) {
	defer func(started time.Time) { metrics.ObserveProvider("smtp", "send_mail", started, err) }(time.Now())
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	headers := [][2]string{
		{"From", m.cfg.From},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=\"utf-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}

	msg.WriteString("\r\n" + body)
	err = smtp.SendMail(addr, m.auth, m.cfg.From, to, []byte(msg.String()))
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
