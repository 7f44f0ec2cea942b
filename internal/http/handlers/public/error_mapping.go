package public

import (
	"errors"

	handlershared "github.com/account-activation/internal/http/handlers/shared"
	"github.com/account-activation/internal/http/response"
	"github.com/account-activation/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgEmailRegistered     = "Email already registered"
	msgInvalidCredentials  = "Invalid email or password"
	msgAlreadyActivated    = "Account already activated"
	msgNoActivationCode    = "No activation code requested"
	msgInvalidCode         = "Invalid or expired activation code"
	msgInvalidEmail        = "email: must be a valid email address"
	msgDispatchUnavailable = "Activation code could not be scheduled, try again later"
	msgInternal            = "Internal server error"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	if errors.Is(err, service.ErrWeakPassword) {
		respondError(c, response.CodeUnprocessable, err.Error(), nil)
		return
	}
	respondError(c, response.CodeInternal, msgInternal, err)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrAccountAlreadyExists, code: response.CodeBadRequest, msg: msgEmailRegistered},
	{target: service.ErrInvalidEmail, code: response.CodeUnprocessable, msg: msgInvalidEmail},
}

var activationCodeErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: msgInvalidCredentials},
	{target: service.ErrAlreadyActivated, code: response.CodeBadRequest, msg: msgAlreadyActivated},
	{target: service.ErrActivationDispatchFailed, code: response.CodeServiceUnavailable, msg: msgDispatchUnavailable},
}

var activateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: msgInvalidCredentials},
	{target: service.ErrAlreadyActivated, code: response.CodeBadRequest, msg: msgAlreadyActivated},
	{target: service.ErrNoActivationCode, code: response.CodeBadRequest, msg: msgNoActivationCode},
	{target: service.ErrInvalidOrExpiredCode, code: response.CodeBadRequest, msg: msgInvalidCode},
}
