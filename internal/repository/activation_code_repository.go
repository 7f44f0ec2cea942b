package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/account-activation/internal/models"

	"gorm.io/gorm"
)

const (
	activationCodeMin = 1000
	activationCodeMax = 9999
)

// ActivationCodeRepository 激活码数据访问接口
type ActivationCodeRepository interface {
	Issue(ctx context.Context, accountID string, ttl time.Duration, now time.Time) (*models.ActivationCode, error)
	HasCode(ctx context.Context, accountID string) (bool, error)
	Verify(ctx context.Context, accountID, code string, now time.Time) (bool, error)
	Delete(ctx context.Context, accountID string) error
}

// GormActivationCodeRepository GORM 实现
type GormActivationCodeRepository struct {
	db       *gorm.DB
	generate func() (string, error)
}

// NewActivationCodeRepository 创建激活码仓库
func NewActivationCodeRepository(db *gorm.DB) *GormActivationCodeRepository {
	return &GormActivationCodeRepository{db: db, generate: GenerateActivationCode}
}

// WithGenerator 替换激活码生成器
func (r *GormActivationCodeRepository) WithGenerator(fn func() (string, error)) *GormActivationCodeRepository {
	if fn == nil {
		return r
	}
	return &GormActivationCodeRepository{db: r.db, generate: fn}
}

// GenerateActivationCode 在 [1000, 9999] 闭区间内均匀生成 4 位激活码
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeMax-activationCodeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+activationCodeMin), nil
}

// Issue 在同一事务内删除旧激活码并写入新激活码
func (r *GormActivationCodeRepository) Issue(ctx context.Context, accountID string, ttl time.Duration, now time.Time) (*models.ActivationCode, error) {
	if accountID == "" {
		return nil, errors.New("account id is empty")
	}
	code, err := r.generate()
	if err != nil {
		return nil, fmt.Errorf("generate activation code: %w", err)
	}
	now = now.UTC()
	record := &models.ActivationCode{
		AccountID: accountID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定未激活的账户行，串行化同一账户的并发签发
		var owner models.Account
		if err := lockForUpdate(tx).Select("id").
			Where("id = ? AND is_active = ?", accountID, false).
			First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotPending
			}
			return err
		}
		if err := tx.Where("account_id = ?", accountID).Delete(&models.ActivationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if errors.Is(err, ErrAccountNotPending) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("issue activation code: %w", err)
	}
	return record, nil
}

// HasCode 判断账户是否存在激活码（忽略过期）
func (r *GormActivationCodeRepository) HasCode(ctx context.Context, accountID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ActivationCode{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check activation code: %w", err)
	}
	return count > 0, nil
}

// Verify 单次查询校验激活码匹配且未过期
func (r *GormActivationCodeRepository) Verify(ctx context.Context, accountID, code string, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ActivationCode{}).
		Where("account_id = ? AND code = ? AND expires_at > ?", accountID, code, now.UTC()).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("verify activation code: %w", err)
	}
	return count > 0, nil
}

// Delete 删除账户激活码，不存在时视为成功
func (r *GormActivationCodeRepository) Delete(ctx context.Context, accountID string) error {
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.ActivationCode{}).Error; err != nil {
		return fmt.Errorf("delete activation code: %w", err)
	}
	return nil
}
