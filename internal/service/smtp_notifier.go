package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/account-activation/internal/config"
)

// SMTPNotifier 通过 SMTP 发送激活码
type SMTPNotifier struct {
	cfg *config.EmailConfig
}

// NewSMTPNotifier 创建 SMTP 通知方
func NewSMTPNotifier(cfg *config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// SendActivationCode 发送激活码邮件
func (n *SMTPNotifier) SendActivationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	if n == nil || n.cfg == nil || n.cfg.Host == "" || n.cfg.Port == 0 || n.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidEmail
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content := buildActivationContent(code, ttl)
	from := buildFromAddress(n.cfg.From, n.cfg.FromName)
	msg := []byte(buildEmailMessage(from, to, content.Subject, content.Text))

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" || n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var client *smtp.Client
	var err error
	switch {
	case n.cfg.UseSSL:
		client, err = dialSMTPWithSSL(addr, n.cfg.Host)
	default:
		client, err = smtp.Dial(addr)
	}
	if err != nil {
		return normalizeEmailSendError(err)
	}
	defer client.Close()

	if n.cfg.UseTLS && !n.cfg.UseSSL {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return normalizeEmailSendError(err)
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return normalizeEmailSendError(err)
			}
		}
	}
	return normalizeEmailSendError(sendSMTPData(client, n.cfg.From, []string{to}, msg))
}

func dialSMTPWithSSL(addr, host string) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown mailbox",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
