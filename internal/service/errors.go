package service

import "errors"

// 账户生命周期错误
var (
	ErrAccountAlreadyExists     = errors.New("account already exists")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrAlreadyActivated         = errors.New("account already activated")
	ErrNoActivationCode         = errors.New("no activation code")
	ErrInvalidOrExpiredCode     = errors.New("invalid or expired activation code")
	ErrActivationDispatchFailed = errors.New("activation code dispatch failed")
)

// 输入校验错误
var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("password does not satisfy policy")
)

// 邮件发送错误
var (
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrEmailDeliveryFailed       = errors.New("email delivery failed")
)
