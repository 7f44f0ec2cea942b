package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/account-activation/internal/models"

	"gorm.io/gorm"
)

// AccountRepository 账户数据访问接口
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	MarkActive(ctx context.Context, id string, activatedAt time.Time) (bool, error)
}

// GormAccountRepository GORM 实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓库
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create 创建未激活账户，身份冲突由唯一索引裁决
func (r *GormAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("account is nil")
	}
	account.IsActive = false
	account.ActivatedAt = nil
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByEmail 根据邮箱获取账户
func (r *GormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &account, nil
}

// GetByID 根据 ID 获取账户
func (r *GormAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &account, nil
}

// MarkActive 激活账户，返回是否实际发生变更（已激活或不存在时为 false）
func (r *GormAccountRepository) MarkActive(ctx context.Context, id string, activatedAt time.Time) (bool, error) {
	activatedAt = activatedAt.UTC()
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND is_active = ?", id, false).
		Updates(map[string]interface{}{
			"is_active":    true,
			"activated_at": activatedAt,
			"updated_at":   activatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("mark account active: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
