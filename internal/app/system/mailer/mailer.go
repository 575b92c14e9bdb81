// Package mailer sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/mtt/mttdash/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Email is a single outgoing message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings. An empty Host puts the mailer in log-only mode.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Sender is implemented by Mailer. Handlers depend on it so tests can capture
// outgoing mail.
type Sender interface {
	Send(msg Email) error
}

// Mailer delivers Email through an SMTP relay.
type Mailer struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics

	// send is smtp.SendMail, replaceable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer. m may be nil.
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg, log: logger, metrics: m, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// Send delivers msg.
func (m *Mailer) Send(msg Email) error {
	if msg.To == "" {
		return errors.New("mailer: recipient is empty")
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("mailer: bad recipient: %w", err)
	}

	if !m.Enabled() {
		m.log.Info("mail not sent (smtp host not configured)",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	body, err := m.build(msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	err = m.send(addr, auth, m.cfg.From, []string{msg.To}, body)
	m.metrics.MailSent(err)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// build renders msg as a multipart/alternative MIME message.
func (m *Mailer) build(msg Email) ([]byte, error) {
	from := (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct {
		ctype   string
		content string
	}{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	} {
		if part.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
	out.Write(body.Bytes())
	return out.Bytes(), nil
}
