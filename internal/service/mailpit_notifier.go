package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/logger"
)

const defaultMailpitTimeout = 10 * time.Second

// MailpitNotifier 通过 Mailpit 兼容的 HTTP 发信接口发送激活码
type MailpitNotifier struct {
	cfg    *config.EmailConfig
	client *http.Client
}

// NewMailpitNotifier 创建 HTTP 发信通知方
func NewMailpitNotifier(cfg *config.EmailConfig) *MailpitNotifier {
	timeout := defaultMailpitTimeout
	if cfg != nil && cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &MailpitNotifier{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type mailpitAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailpitSendRequest struct {
	From    mailpitAddress   `json:"From"`
	To      []mailpitAddress `json:"To"`
	Subject string           `json:"Subject"`
	Text    string           `json:"Text"`
	HTML    string           `json:"HTML,omitempty"`
}

// SendActivationCode 发送激活码邮件，非 2xx 响应视为失败
func (n *MailpitNotifier) SendActivationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	if n == nil || n.cfg == nil || strings.TrimSpace(n.cfg.APIURL) == "" || strings.TrimSpace(n.cfg.From) == "" {
		return ErrEmailServiceNotConfigured
	}
	content := buildActivationContent(code, ttl)
	body, err := json.Marshal(mailpitSendRequest{
		From:    mailpitAddress{Email: n.cfg.From, Name: n.cfg.FromName},
		To:      []mailpitAddress{{Email: to}},
		Subject: content.Subject,
		Text:    content.Text,
		HTML:    content.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(n.cfg.APIURL), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrEmailDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(n.cfg.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status=%d body=%s", ErrEmailDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	logger.Debugw("mailpit_email_sent", "to", to, "status", resp.StatusCode)
	return nil
}
