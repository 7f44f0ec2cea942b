package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/account-activation/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskActivationCodeIssue 激活码签发与通知任务
	TaskActivationCodeIssue = constants.TaskActivationCodeIssue
)

// ActivationCodePayload 激活码任务载荷
type ActivationCodePayload struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Trigger   string `json:"trigger"` // register / request
}

// 任务触发来源
const (
	TriggerRegister = "register"
	TriggerRequest  = "request"
)

// Validate 校验载荷
func (p ActivationCodePayload) Validate() error {
	if strings.TrimSpace(p.AccountID) == "" {
		return errors.New("account_id is required")
	}
	return nil
}

// NewActivationCodeTask 创建激活码任务
func NewActivationCodeTask(payload ActivationCodePayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivationCodeIssue, body), nil
}

// ParseActivationCodePayload 解析激活码任务载荷
func ParseActivationCodePayload(data []byte) (ActivationCodePayload, error) {
	var payload ActivationCodePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	return payload, payload.Validate()
}
