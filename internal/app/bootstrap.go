package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/models"
	"github.com/account-activation/internal/provider"
	"github.com/account-activation/internal/router"
	"github.com/account-activation/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}
	if !isKnownMode(mode) {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine, err := router.SetupRouter(cfg, container)
		if err != nil {
			return nil, err
		}
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务；队列未启用时由进程内调度器承担后台任务
	switch {
	case cfg.Queue.Enabled && (mode == ModeAll || mode == ModeWorker):
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case !cfg.Queue.Enabled && mode == ModeWorker:
		return nil, errors.New("worker mode requires queue.enabled=true")
	case !cfg.Queue.Enabled && container.InlineDispatcher != nil:
		services = append(services, container.InlineDispatcher)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// OpenDatabase 打开数据库并执行迁移
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, gormLogLevel(cfg.Server.Mode))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := models.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		_ = models.CloseDB(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	db := opts.DB
	if db == nil {
		opened, err := OpenDatabase(context.Background(), opts.Config)
		if err != nil {
			return err
		}
		defer func() { _ = models.CloseDB(opened) }()
		db = opened
	}

	container, err := provider.NewContainer(opts.Config, db)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			opts.Logger.Warnw("app_container_close_failed", "error", err)
		}
	}()

	runner, err := BuildRunner(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "queue_enabled", opts.Config.Queue.Enabled)
	return RunWithOptions(runner, opts)
}
