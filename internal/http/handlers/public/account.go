package public

import (
	"fmt"
	"time"

	"github.com/account-activation/internal/http/response"
	"github.com/account-activation/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ActivateRequest 激活请求
type ActivateRequest struct {
	Code string `json:"code" binding:"required,activation_code"`
}

// AccountView 账户响应结构
type AccountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageView 消息响应结构
type MessageView struct {
	Message string `json:"message"`
}

func newAccountView(account *models.Account) AccountView {
	return AccountView{
		ID:        account.ID,
		Email:     account.Email,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt,
	}
}

// Register 注册账户
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeUnprocessable, validationMessage(err), nil)
		return
	}

	account, err := h.AccountService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, registerErrorRules)
		return
	}
	response.Created(c, newAccountView(account))
}

// RequestActivationCode 申请新的激活码
func (h *Handler) RequestActivationCode(c *gin.Context) {
	email, password, ok := basicCredentials(c)
	if !ok {
		return
	}

	account, err := h.AccountService.RequestActivationCode(c.Request.Context(), email, password)
	if err != nil {
		respondWithMappedError(c, err, activationCodeErrorRules)
		return
	}
	msg := fmt.Sprintf("Activation code sent to %s", account.Email)
	response.SuccessWithMsg(c, msg, MessageView{Message: msg})
}

// Activate 使用激活码激活账户
func (h *Handler) Activate(c *gin.Context) {
	email, password, ok := basicCredentials(c)
	if !ok {
		return
	}
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeUnprocessable, validationMessage(err), nil)
		return
	}

	if _, err := h.AccountService.Activate(c.Request.Context(), email, password, req.Code); err != nil {
		respondWithMappedError(c, err, activateErrorRules)
		return
	}
	msg := "Account activated successfully"
	response.SuccessWithMsg(c, msg, MessageView{Message: msg})
}
