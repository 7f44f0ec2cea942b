package public

import (
	"context"
	"net/http"
	"time"

	handlershared "github.com/account-activation/internal/http/handlers/shared"
	"github.com/account-activation/internal/models"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

const (
	statusOperational = "operational"
	statusDegraded    = "degraded"
)

// HealthView 健康检查响应
type HealthView struct {
	Message string            `json:"message"`
	Version string            `json:"version"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
}

// Health 服务健康检查
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	view := HealthView{
		Message: h.Config.App.Name,
		Version: h.Config.App.Version,
		Status:  statusOperational,
		Checks:  map[string]string{},
	}

	if err := models.Ping(ctx, h.DB); err != nil {
		logHealthFailure(c, "database", err)
		view.Checks["database"] = "error"
		view.Status = statusDegraded
	} else {
		view.Checks["database"] = "ok"
	}

	if !h.Cache.Enabled() {
		view.Checks["redis"] = "disabled"
	} else if err := h.Cache.Ping(ctx); err != nil {
		logHealthFailure(c, "redis", err)
		view.Checks["redis"] = "error"
		view.Status = statusDegraded
	} else {
		view.Checks["redis"] = "ok"
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		view.Checks["dispatcher"] = "queue"
	} else {
		view.Checks["dispatcher"] = "inline"
	}

	code := http.StatusOK
	if view.Status != statusOperational {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, view)
}

func logHealthFailure(c *gin.Context, dependency string, err error) {
	handlershared.RequestLog(c).Warnw("health_check_failed", "dependency", dependency, "error", err)
}
