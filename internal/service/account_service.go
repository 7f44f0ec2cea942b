package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/constants"
	"github.com/account-activation/internal/logger"
	"github.com/account-activation/internal/models"
	"github.com/account-activation/internal/queue"
	"github.com/account-activation/internal/repository"
)

// ActivationDispatcher 将激活码签发与通知调度为后台任务
type ActivationDispatcher interface {
	DispatchActivationCode(ctx context.Context, payload queue.ActivationCodePayload) error
}

// AccountService 账户注册与激活状态机
type AccountService struct {
	cfg        *config.Config
	accounts   repository.AccountRepository
	codes      repository.ActivationCodeRepository
	hasher     PasswordHasher
	dispatcher ActivationDispatcher
	now        func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

// NewAccountService 创建账户服务
func NewAccountService(cfg *config.Config, accounts repository.AccountRepository, codes repository.ActivationCodeRepository, hasher PasswordHasher, dispatcher ActivationDispatcher) *AccountService {
	return &AccountService{
		cfg:        cfg,
		accounts:   accounts,
		codes:      codes,
		hasher:     hasher,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock 替换时钟
func (s *AccountService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register 注册未激活账户，按配置在后台下发激活码
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Email:        normalized,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			logger.Warnw("account_register_conflict", "email", normalized)
			return nil, ErrAccountAlreadyExists
		}
		return nil, err
	}
	logger.Infow("account_registered", "account_id", account.ID, "email", account.Email)

	if s.cfg.Activation.AutoSendOnRegister {
		if err := s.dispatch(ctx, account, queue.TriggerRegister); err != nil {
			logger.Warnw("account_register_dispatch_failed", "account_id", account.ID, "error", err)
		}
	}
	return account, nil
}

// Authenticate 校验身份与密码；身份不存在与密码错误返回同一错误
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		s.burnHash(password)
		return nil, ErrInvalidCredentials
	}
	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if account == nil {
		s.burnHash(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// RequestActivationCode 为未激活账户调度新的激活码，旧激活码随签发失效
func (s *AccountService) RequestActivationCode(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if account.IsActive {
		logger.Warnw("activation_code_request_rejected", "account_id", account.ID, "reason", "already_activated")
		return nil, ErrAlreadyActivated
	}
	if err := s.dispatch(ctx, account, queue.TriggerRequest); err != nil {
		logger.Errorw("activation_code_dispatch_failed", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrActivationDispatchFailed, err)
	}
	return account, nil
}

// Activate 校验激活码并激活账户
func (s *AccountService) Activate(ctx context.Context, email, password, code string) (*models.Account, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if account.IsActive {
		logger.Warnw("account_activate_rejected", "account_id", account.ID, "reason", "already_activated")
		return nil, ErrAlreadyActivated
	}
	hasCode, err := s.codes.HasCode(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if !hasCode {
		// 激活码被并发激活清理时按已激活处理
		current, err := s.accounts.GetByID(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.IsActive {
			logger.Warnw("account_activate_rejected", "account_id", account.ID, "reason", "concurrent_activation")
			return nil, ErrAlreadyActivated
		}
		logger.Warnw("account_activate_rejected", "account_id", account.ID, "reason", "no_code")
		return nil, ErrNoActivationCode
	}
	now := s.now()
	valid, err := s.codes.Verify(ctx, account.ID, code, now)
	if err != nil {
		return nil, err
	}
	if !valid {
		logger.Warnw("account_activate_rejected", "account_id", account.ID, "reason", "invalid_or_expired_code")
		return nil, ErrInvalidOrExpiredCode
	}

	changed, err := s.accounts.MarkActive(ctx, account.ID, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		// 并发激活已先行完成
		logger.Warnw("account_activate_rejected", "account_id", account.ID, "reason", "concurrent_activation")
		return nil, ErrAlreadyActivated
	}
	if err := s.codes.Delete(ctx, account.ID); err != nil {
		logger.Warnw("activation_code_cleanup_failed", "account_id", account.ID, "error", err)
	}

	account.IsActive = true
	account.ActivatedAt = &now
	logger.Infow("account_activated", "account_id", account.ID)
	return account, nil
}

func (s *AccountService) dispatch(ctx context.Context, account *models.Account, trigger string) error {
	if s.dispatcher == nil {
		return errors.New("activation dispatcher not configured")
	}
	return s.dispatcher.DispatchActivationCode(ctx, queue.ActivationCodePayload{
		AccountID: account.ID,
		Email:     account.Email,
		Trigger:   trigger,
	})
}

// burnHash 未知身份也执行一次哈希比较
func (s *AccountService) burnHash(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password")
		if err == nil {
			s.decoyHash = hash
		}
	})
	_ = s.hasher.Verify(password, s.decoyHash)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(normalized)
	if err != nil || parsed.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveActivationCodeTTL(cfg config.ActivationConfig) time.Duration {
	if cfg.CodeTTLSeconds <= 0 {
		return time.Duration(constants.DefaultActivationCodeTTLSeconds) * time.Second
	}
	return time.Duration(cfg.CodeTTLSeconds) * time.Second
}
