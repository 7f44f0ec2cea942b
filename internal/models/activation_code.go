package models

import "time"

// ActivationCode 账户激活码，每个账户至多一条
type ActivationCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                     // 主键
	AccountID string    `gorm:"uniqueIndex;not null;type:varchar(36)" json:"account_id"` // 关联账户ID
	Code      string    `gorm:"not null;type:varchar(4)" json:"-"`                       // 激活码（不返回给前端）
	CreatedAt time.Time `json:"created_at"`                                              // 签发时间
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`                        // 过期时间
}

// TableName 指定表名
func (ActivationCode) TableName() string {
	return "activation_codes"
}
