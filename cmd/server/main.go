package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/account-activation/internal/app"
	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/constants"
	"github.com/account-activation/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	printStartupBanner(cfg)

	if cfg.Server.Mode == constants.ServerModeRelease {
		for _, warning := range releaseWarnings(cfg) {
			stdLog.Printf("警告: %s", warning)
		}
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == constants.ServerModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(cfg *config.Config) {
	fmt.Println(ansiCyan + ansiBold + fmt.Sprintf("%s %s", cfg.App.Name, cfg.App.Version) + ansiReset)
	fmt.Println(ansiDim + fmt.Sprintf("database=%s queue_enabled=%t email_driver=%s", cfg.Database.Driver, cfg.Queue.Enabled, cfg.Email.Driver) + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

// releaseWarnings 生产环境下不建议使用的配置
func releaseWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Security.BcryptCost < bcrypt.DefaultCost {
		warnings = append(warnings, fmt.Sprintf("bcrypt_cost=%d 低于默认值 %d", cfg.Security.BcryptCost, bcrypt.DefaultCost))
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Email.Driver), constants.EmailDriverLog) {
		warnings = append(warnings, "email.driver=log 不会真正发送激活码")
	}
	if !cfg.Queue.Enabled {
		warnings = append(warnings, "queue 未启用，激活码任务在进程内执行，重启时在途任务会丢失")
	}
	return warnings
}
