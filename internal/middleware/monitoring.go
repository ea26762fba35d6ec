package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"contactbox/backend/internal/monitoring"
)

// Monitoring 指标采集中间件
type Monitoring struct {
	metrics *monitoring.Metrics
}

// NewMonitoring 创建指标采集中间件
func NewMonitoring(metrics *monitoring.Metrics) *Monitoring {
	return &Monitoring{metrics: metrics}
}

// HTTPMetrics 记录 HTTP 请求指标
func (m *Monitoring) HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			int64(c.Writer.Size()),
		)

		if c.Writer.Status() >= 400 {
			m.metrics.RecordError("http_error", "http")
		}
		if c.Writer.Status() == http.StatusTooManyRequests {
			m.metrics.RecordRateLimitBlock(path)
		}
	}
}

// BusinessMetrics 按路由记录业务指标
func (m *Monitoring) BusinessMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 只统计成功的写操作
		if c.Writer.Status() >= 400 {
			return
		}

		switch c.FullPath() {
		case "/api/messages":
			if c.Request.Method == http.MethodPost {
				m.metrics.RecordMessageCreated()
			}
		case "/api/messages/:id":
			switch c.Request.Method {
			case http.MethodPatch:
				m.metrics.RecordMessageRead()
			case http.MethodDelete:
				m.metrics.RecordMessageDeleted()
			}
		case "/api/users":
			if c.Request.Method == http.MethodPost {
				m.metrics.RecordUserCreated()
			}
		}
	}
}
