package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/models"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

// SendMessage renders a ledger entry into an email and transmits it. The
// visitor's address goes into Reply-To so replies reach the submitter,
// not the relay. The whole exchange is bounded by the configured timeout;
// running out of time counts as a transmission failure.
func (s *EmailService) SendMessage(ctx context.Context, msg *models.Message) error {
	if !s.IsConfigured() {
		return fmt.Errorf("smtp transport is not configured")
	}

	to := msg.Recipients()
	if len(to) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	payload, err := s.render(msg, to)
	if err != nil {
		return err
	}

	return s.transmit(ctx, to, payload)
}

func (s *EmailService) render(msg *models.Message, to []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Reply-To: %s\r\n", safeHeader(msg.VisitorEmail))
	fmt.Fprintf(&buf, "Subject: %s\r\n", safeHeader(msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", writer.Boundary())
	buf.WriteString("\r\n")

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", `text/html; charset="UTF-8"`)
	part, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(s.renderHTML(msg))); err != nil {
		return nil, err
	}

	if msg.Attachment != nil && *msg.Attachment != "" {
		if err := attachFile(writer, *msg.Attachment); err != nil {
			return nil, fmt.Errorf("failed to attach file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *EmailService) renderHTML(msg *models.Message) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(msg.Subject))
	b.WriteString(formatBody(msg.Body))
	if msg.ImageURL != nil && *msg.ImageURL != "" {
		fmt.Fprintf(&b, `<p><img src=%q alt="attached image"></p>`, *msg.ImageURL)
	}
	fmt.Fprintf(&b, "<p>Reply to: %s</p>", html.EscapeString(msg.VisitorEmail))
	b.WriteString("</body></html>")
	return b.String()
}

// formatBody renders a structured body as an HTML table, one row per
// field. Anything that does not decode as an object falls back to a
// paragraph.
func formatBody(body json.RawMessage) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Sprintf("<p>%s</p>", html.EscapeString(string(body)))
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;"><tbody>`)
	for _, key := range keys {
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(key), html.EscapeString(fmt.Sprintf("%v", fields[key])))
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func attachFile(writer *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	filename := filepath.Base(path)
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/octet-stream")
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// RFC 2045 line length limit
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// transmit speaks SMTP over a connection with a hard deadline so a stalled
// server cannot pin a request goroutine.
func (s *EmailService) transmit(ctx context.Context, to []string, payload []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	timeout := s.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}

	return client.Quit()
}

func safeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", "")
	return strings.ReplaceAll(value, "\n", "")
}
