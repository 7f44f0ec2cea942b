package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account 账户表
type Account struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`                // 主键（UUID）
	Email        string     `gorm:"uniqueIndex;not null;type:varchar(320)" json:"email"` // 邮箱（唯一身份）
	PasswordHash string     `gorm:"not null" json:"-"`                                   // 密码哈希（不返回给前端）
	IsActive     bool       `gorm:"not null;default:false;index" json:"is_active"`       // 是否已激活
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`                              // 激活时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate 分配不可变主键
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
