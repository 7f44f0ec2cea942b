package service

import (
	"fmt"

	"github.com/account-activation/internal/config"
)

// bcrypt 只处理前 72 字节
const maxBcryptPasswordBytes = 72

type passwordPolicyError struct {
	reason string
	limit  int
}

func (e passwordPolicyError) Error() string {
	return fmt.Sprintf("password %s %d", e.reason, e.limit)
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	minLength := policy.MinLength
	if minLength < 0 {
		minLength = 0
	}
	maxLength := policy.MaxLength
	if maxLength <= 0 || maxLength > maxBcryptPasswordBytes {
		maxLength = maxBcryptPasswordBytes
	}
	if len([]rune(password)) < minLength {
		return passwordPolicyError{reason: "shorter than", limit: minLength}
	}
	if len(password) > maxLength {
		return passwordPolicyError{reason: "longer than", limit: maxLength}
	}
	return nil
}
