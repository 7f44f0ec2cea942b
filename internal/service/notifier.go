package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/constants"
	"github.com/account-activation/internal/logger"
)

// Notifier 激活码通知发送方
type Notifier interface {
	SendActivationCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// NewNotifier 根据邮件驱动创建通知发送方
func NewNotifier(cfg *config.EmailConfig) (Notifier, error) {
	if cfg == nil {
		return nil, ErrEmailServiceNotConfigured
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.EmailDriverMailpit:
		return NewMailpitNotifier(cfg), nil
	case constants.EmailDriverSMTP:
		return NewSMTPNotifier(cfg), nil
	case constants.EmailDriverLog:
		return LogNotifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported email driver: %s", cfg.Driver)
	}
}

// LogNotifier 仅记录日志，用于本地开发
type LogNotifier struct{}

// SendActivationCode 记录激活码
func (LogNotifier) SendActivationCode(_ context.Context, to, code string, ttl time.Duration) error {
	logger.Infow("activation_code_logged", "to", to, "code", code, "ttl_seconds", int(ttl.Seconds()))
	return nil
}

type activationContent struct {
	Subject string
	Text    string
	HTML    string
}

func buildActivationContent(code string, ttl time.Duration) activationContent {
	minutes := formatTTLMinutes(ttl)
	text := fmt.Sprintf("Your activation code is: %s\n\n"+
		"This code expires in %s minute(s).\n\n"+
		"If you didn't request this code, please ignore this email.", code, minutes)
	escaped := html.EscapeString(code)
	body := fmt.Sprintf(`<h2>Your Activation Code</h2>
<p>Your activation code is:</p>
<p style="font-size: 24px; font-weight: bold; letter-spacing: 2px;">%s</p>
<p>This code expires in <strong>%s minute(s)</strong>.</p>
<p style="color: #666; font-size: 14px;">If you didn't request this code, please ignore this email.</p>
`, escaped, minutes)
	return activationContent{
		Subject: "Your activation code",
		Text:    text,
		HTML:    body,
	}
}

// formatTTLMinutes 60s -> "1"，90s -> "1.5"
func formatTTLMinutes(ttl time.Duration) string {
	if ttl <= 0 {
		return "0"
	}
	formatted := fmt.Sprintf("%.2f", ttl.Minutes())
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}
