package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher 单向加盐密码哈希
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher bcrypt 实现
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher 创建 bcrypt 哈希器，cost 超出范围时回落到默认值
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost 当前成本因子
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash 生成密码哈希
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 校验密码，哈希格式错误时返回 false
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
