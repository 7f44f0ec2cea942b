package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// AppError 携带响应码与原始错误的接口错误
type AppError struct {
	Code    int
	Message string
	Err     error
}

// WrapError 构造接口错误，非错误码统一按 500 处理
func WrapError(code int, message string, err error) *AppError {
	if code < CodeBadRequest {
		code = CodeInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ServerSide 5xx 错误
func (e *AppError) ServerSide() bool {
	return e.Code >= CodeInternal
}

// Write 写出错误响应并终止后续处理
func (e *AppError) Write(c *gin.Context) {
	Error(c, e.Code, e.Message)
}
