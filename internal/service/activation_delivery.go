package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/logger"
	"github.com/account-activation/internal/queue"
	"github.com/account-activation/internal/repository"
)

// DeliveryOutcome 激活码任务执行结果
type DeliveryOutcome string

// 激活码任务执行结果
const (
	DeliverySent            DeliveryOutcome = "sent"
	DeliverySkippedMissing  DeliveryOutcome = "skipped_missing_account"
	DeliverySkippedActive   DeliveryOutcome = "skipped_already_active"
	DeliveryIssueFailed     DeliveryOutcome = "issue_failed"
	DeliveryNotifyFailed    DeliveryOutcome = "notify_failed"
	DeliveryPayloadRejected DeliveryOutcome = "payload_rejected"
)

// ActivationDeliveryService 后台签发激活码并通知用户
type ActivationDeliveryService struct {
	accounts repository.AccountRepository
	codes    repository.ActivationCodeRepository
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

// NewActivationDeliveryService 创建激活码下发服务
func NewActivationDeliveryService(cfg config.ActivationConfig, accounts repository.AccountRepository, codes repository.ActivationCodeRepository, notifier Notifier) *ActivationDeliveryService {
	return &ActivationDeliveryService{
		accounts: accounts,
		codes:    codes,
		notifier: notifier,
		ttl:      resolveActivationCodeTTL(cfg),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock 替换时钟
func (s *ActivationDeliveryService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Deliver 签发新激活码（替换旧码）后发送通知；失败不重试
func (s *ActivationDeliveryService) Deliver(ctx context.Context, payload queue.ActivationCodePayload) (DeliveryOutcome, error) {
	if err := payload.Validate(); err != nil {
		return DeliveryPayloadRejected, err
	}
	account, err := s.accounts.GetByID(ctx, payload.AccountID)
	if err != nil {
		return DeliveryIssueFailed, err
	}
	if account == nil {
		logger.Debugw("activation_delivery_skip_missing_account", "account_id", payload.AccountID)
		return DeliverySkippedMissing, nil
	}
	if account.IsActive {
		logger.Debugw("activation_delivery_skip_active_account", "account_id", account.ID)
		return DeliverySkippedActive, nil
	}

	record, err := s.codes.Issue(ctx, account.ID, s.ttl, s.now())
	if errors.Is(err, repository.ErrAccountNotPending) {
		// 读取后账户已被激活
		logger.Debugw("activation_delivery_skip_active_account", "account_id", account.ID, "stage", "issue")
		return DeliverySkippedActive, nil
	}
	if err != nil {
		return DeliveryIssueFailed, err
	}
	logger.Infow("activation_code_issued",
		"account_id", account.ID,
		"trigger", payload.Trigger,
		"expires_at", record.ExpiresAt,
	)

	if s.notifier == nil {
		return DeliveryNotifyFailed, errors.New("notifier not configured")
	}
	if err := s.notifier.SendActivationCode(ctx, account.Email, record.Code, s.ttl); err != nil {
		return DeliveryNotifyFailed, fmt.Errorf("send activation code: %w", err)
	}
	logger.Infow("activation_code_sent", "account_id", account.ID, "email", account.Email)
	return DeliverySent, nil
}

// Handle 执行激活码任务并记录结果，供队列消费者与进程内调度器共用
func (s *ActivationDeliveryService) Handle(ctx context.Context, payload queue.ActivationCodePayload) error {
	outcome, err := s.Deliver(ctx, payload)
	if err != nil {
		logger.Errorw("activation_delivery_failed",
			"account_id", payload.AccountID,
			"trigger", payload.Trigger,
			"outcome", string(outcome),
			"error", err,
		)
		return err
	}
	logger.Debugw("activation_delivery_done", "account_id", payload.AccountID, "outcome", string(outcome))
	return nil
}
