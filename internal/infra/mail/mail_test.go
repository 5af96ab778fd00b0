package mail_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one message and sends its DATA section on the channel.
func fakeSMTP(t *testing.T) (string, string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 localhost ESMTP")
		var body strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					data <- body.String()
					write("250 OK")
					continue
				}
				body.WriteString(line)
				continue
			}
			switch cmd := strings.ToUpper(strings.TrimSpace(line)); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case cmd == "DATA":
				inData = true
				write("354 go ahead")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port, data
}

func TestNotifySendsToOperators(t *testing.T) {
	host, port, data := fakeSMTP(t)
	server := mail.NewMailServer(&mail.MailConfig{
		SMTPHost:  host,
		SMTPPort:  port,
		From:      "alerts@orbiter.website",
		Operators: []string{"ops@orbiter.website", "oncall@orbiter.website"},
	})

	alert := mail.SiteCreatedAlert{SiteURL: "https://mysite.orbiter.website", CID: "bafy", UserID: uuid.New()}
	require.NoError(t, server.Notify(context.Background(), alert.GetSubject(), alert.GetBody()))

	msg := <-data
	require.Contains(t, msg, "Subject: New site\r\n")
	require.Contains(t, msg, "To: ops@orbiter.website,oncall@orbiter.website\r\n")
	require.Contains(t, msg, "New site: https://mysite.orbiter.website")
}

func TestNotifyWithoutHostIsNoop(t *testing.T) {
	server := mail.NewMailServer(&mail.MailConfig{Operators: []string{"ops@orbiter.website"}})
	require.NoError(t, server.Notify(context.Background(), "subject", "body"))
}

func TestCleanupAlertBody(t *testing.T) {
	siteID := uuid.New()
	alert := mail.CleanupAlert{SiteID: siteID, Step: "delete_worker_route", Target: "wr-1", Attempts: 5, Reasons: []string{"timeout"}}
	require.Contains(t, alert.GetBody(), "delete_worker_route for site "+siteID.String())
	require.Contains(t, alert.GetBody(), "failed 5 times")
}
