package router

import (
	"github.com/account-activation/internal/config"
	publichandlers "github.com/account-activation/internal/http/handlers/public"
	"github.com/account-activation/internal/http/response"
	"github.com/account-activation/internal/logger"
	"github.com/account-activation/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) (*gin.Engine, error) {
	if err := publichandlers.RegisterValidators(); err != nil {
		return nil, err
	}
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	publicHandler := publichandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		users := apiV1.Group("/users")
		{
			users.POST("/register", publicHandler.Register)
			users.POST("/activation-code", publicHandler.RequestActivationCode)
			users.POST("/activate", publicHandler.Activate)
		}
	}

	// 健康检查
	r.GET("/", publicHandler.Health)
	r.GET("/health", publicHandler.Health)

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Not found")
	})
	r.NoMethod(func(ctx *gin.Context) {
		response.Error(ctx, response.CodeMethodNotAllowed, "Method not allowed")
	})

	return r, nil
}
