package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/account-activation/internal/logger"
)

// ErrDispatcherClosed 调度器已停止
var ErrDispatcherClosed = errors.New("dispatcher closed")

// ActivationHandler 激活码任务处理函数
type ActivationHandler func(ctx context.Context, payload ActivationCodePayload) error

// InlineDispatcher 队列未启用时在进程内后台执行激活码任务
type InlineDispatcher struct {
	handler ActivationHandler
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewInlineDispatcher 创建进程内调度器
func NewInlineDispatcher(handler ActivationHandler, timeout time.Duration) *InlineDispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &InlineDispatcher{handler: handler, timeout: timeout}
}

// DispatchActivationCode 调度任务后立即返回，任务使用独立上下文执行
func (d *InlineDispatcher) DispatchActivationCode(_ context.Context, payload ActivationCodePayload) error {
	if d == nil || d.handler == nil {
		return errors.New("inline dispatcher not initialized")
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	go d.run(payload)
	return nil
}

func (d *InlineDispatcher) run(payload ActivationCodePayload) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("inline_activation_job_panic", "account_id", payload.AccountID, "panic", fmt.Sprint(r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.handler(ctx, payload); err != nil {
		logger.Debugw("inline_activation_job_failed", "account_id", payload.AccountID, "error", err)
	}
}

// Name 服务名称
func (d *InlineDispatcher) Name() string {
	return "inline_dispatcher"
}

// Start 阻塞直到上下文结束
func (d *InlineDispatcher) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Stop 拒绝新任务并等待在途任务完成
func (d *InlineDispatcher) Stop(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
