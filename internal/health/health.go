package health

import (
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"contactbox/backend/internal/storage"
)

// Checker 健康检查器
//
// 暴露 /live 和 /ready 两个探针：存活探针只确认进程在跑，
// 就绪探针额外要求存储后端可达。
type Checker struct {
	handler healthcheck.Handler
	store   storage.Store
	logger  *zap.Logger
}

// NewChecker 创建健康检查器
func NewChecker(store storage.Store, logger *zap.Logger) *Checker {
	c := &Checker{
		handler: healthcheck.NewHandler(),
		store:   store,
		logger:  logger,
	}

	// goroutine 数量异常增长通常意味着泄漏
	c.handler.AddLivenessCheck("goroutine-count", healthcheck.GoroutineCountCheck(2000))

	c.handler.AddReadinessCheck("storage", func() error {
		if err := store.Health(); err != nil {
			logger.Warn("storage readiness check failed", zap.Error(err))
			return err
		}
		return nil
	})

	return c
}

// LiveEndpoint 存活探针处理函数
func (c *Checker) LiveEndpoint() http.HandlerFunc {
	return c.handler.LiveEndpoint
}

// ReadyEndpoint 就绪探针处理函数
func (c *Checker) ReadyEndpoint() http.HandlerFunc {
	return c.handler.ReadyEndpoint
}

// Status 返回兼容旧版管理后台的健康状态
func (c *Checker) Status() map[string]interface{} {
	database := "connected"
	if err := c.store.Health(); err != nil {
		database = "disconnected"
	}

	return map[string]interface{}{
		"status":    "ok",
		"message":   "Server is running",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
