package provider

import (
	"errors"
	"time"

	"github.com/account-activation/internal/cache"
	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/logger"
	"github.com/account-activation/internal/queue"
	"github.com/account-activation/internal/repository"
	"github.com/account-activation/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Store

	// 队列启用时使用 QueueClient，否则使用进程内调度器
	QueueClient      *queue.Client
	InlineDispatcher *queue.InlineDispatcher

	// Repositories
	AccountRepo        repository.AccountRepository
	ActivationCodeRepo repository.ActivationCodeRepository

	// Services
	PasswordHasher     service.PasswordHasher
	Notifier           service.Notifier
	AccountService     *service.AccountService
	ActivationDelivery *service.ActivationDeliveryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("database is nil")
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Cache:  cache.NewStore(&cfg.Redis),
	}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Dispatcher 当前生效的激活码任务调度器
func (c *Container) Dispatcher() service.ActivationDispatcher {
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		return c.QueueClient
	}
	return c.InlineDispatcher
}

// Close 释放外部连接
func (c *Container) Close() error {
	var errs []error
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) initRepositories() {
	c.AccountRepo = repository.NewAccountRepository(c.DB)
	c.ActivationCodeRepo = repository.NewActivationCodeRepository(c.DB)
}

func (c *Container) initServices() error {
	notifier, err := service.NewNotifier(&c.Config.Email)
	if err != nil {
		logger.Errorw("provider_init_notifier_failed", "driver", c.Config.Email.Driver, "error", err)
		return err
	}
	c.Notifier = notifier
	c.PasswordHasher = service.NewBcryptHasher(c.Config.Security.BcryptCost)
	c.ActivationDelivery = service.NewActivationDeliveryService(c.Config.Activation, c.AccountRepo, c.ActivationCodeRepo, c.Notifier)

	jobTimeout := time.Duration(c.Config.Activation.JobTimeoutSeconds) * time.Second
	if c.Config.Queue.Enabled {
		qc, err := queue.NewClient(&c.Config.Queue, jobTimeout)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
			return err
		}
		c.QueueClient = qc
	} else {
		c.InlineDispatcher = queue.NewInlineDispatcher(c.ActivationDelivery.Handle, jobTimeout)
		logger.Infow("provider_queue_disabled_use_inline_dispatcher")
	}

	c.AccountService = service.NewAccountService(c.Config, c.AccountRepo, c.ActivationCodeRepo, c.PasswordHasher, c.Dispatcher())
	return nil
}
