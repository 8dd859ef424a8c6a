package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Sender delivers a plain-text message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay with PLAIN auth. Port 465
// uses implicit TLS; any other port goes through smtp.SendMail, which
// upgrades with STARTTLS when the server offers it.
type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// NewSMTPMailer creates a mailer. From defaults to user.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		Timeout:  30 * time.Second,
	}
}

// Configured reports whether credentials are present. Values still holding
// the "your-" placeholders of the sample config count as missing.
func (m *SMTPMailer) Configured() bool {
	if m == nil || m.Host == "" || m.User == "" || m.Password == "" {
		return false
	}
	return !strings.Contains(m.User, "your-") && !strings.Contains(m.Password, "your-")
}

// Send delivers body to a single recipient.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp: mailer not configured")
	}
	msg := buildMessage(m.From, to, subject, body)
	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))

	if m.Port == 465 {
		return m.sendImplicitTLS(addr, auth, to, msg)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, msg)
}

func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: m.Timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(m.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(msg.String())
}

// retryBase is the first backoff delay; it doubles on each attempt.
var retryBase = time.Second

// SendWithRetry sends a message with exponential backoff retry.
func SendWithRetry(ctx context.Context, s Sender, to, subject, body string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := s.Send(to, subject, body); err != nil {
			lastErr = err
			backoff := retryBase * time.Duration(1<<uint(i))
			log.Printf("[WARN] email send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
