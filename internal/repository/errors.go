package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateIdentity 唯一身份冲突
var ErrDuplicateIdentity = errors.New("duplicate identity")

// ErrAccountNotPending 账户已激活或不存在，不再签发激活码
var ErrAccountNotPending = errors.New("account not pending activation")

const pgUniqueViolation = "23505"

// isUniqueViolation 识别唯一约束冲突，兼容 gorm 翻译错误、pgx 原生错误与 sqlite 文本错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
