package worker

import (
	"context"
	"fmt"

	"github.com/account-activation/internal/logger"
	"github.com/account-activation/internal/provider"
	"github.com/account-activation/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskActivationCodeIssue, c.handleActivationCodeIssue)
}

// 激活码任务只执行一次，失败时直接丢弃
func (c *Consumer) handleActivationCodeIssue(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_activation_code_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseActivationCodePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_activation_code_unmarshal_failed", "error", err)
		return fmt.Errorf("parse activation payload: %v: %w", err, asynq.SkipRetry)
	}
	if c.ActivationDelivery == nil {
		logger.Warnw("worker_activation_code_skip_delivery_nil", "account_id", payload.AccountID)
		return fmt.Errorf("activation delivery not configured: %w", asynq.SkipRetry)
	}
	if err := c.ActivationDelivery.Handle(ctx, payload); err != nil {
		return fmt.Errorf("activation delivery: %v: %w", err, asynq.SkipRetry)
	}
	return nil
}
