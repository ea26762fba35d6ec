package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 系统指标集合
type Metrics struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 业务指标
	messagesCreated prometheus.Counter
	messagesRead    prometheus.Counter
	messagesDeleted prometheus.Counter
	messagesTotal   prometheus.Gauge
	messagesUnread  prometheus.Gauge
	usersCreated    prometheus.Counter

	// 运行时指标
	errorsTotal      *prometheus.CounterVec
	panicsTotal      prometheus.Counter
	rateLimitBlocked *prometheus.CounterVec
	wsConnections    prometheus.Gauge
	cacheHits        *prometheus.CounterVec
	memoryUsage      prometheus.Gauge
}

// NewMetrics 创建并注册所有指标
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbox_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbox_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		httpResponseSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbox_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(128, 4, 8),
		}, []string{"method", "path"}),

		messagesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactbox_messages_created_total",
			Help: "Total number of contact messages created",
		}),

		messagesRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactbox_messages_read_total",
			Help: "Total number of messages marked as read",
		}),

		messagesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactbox_messages_deleted_total",
			Help: "Total number of messages deleted",
		}),

		messagesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "contactbox_messages_stored",
			Help: "Current number of stored messages",
		}),

		messagesUnread: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "contactbox_messages_unread",
			Help: "Current number of unread messages",
		}),

		usersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactbox_users_created_total",
			Help: "Total number of admin users created",
		}),

		errorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbox_errors_total",
			Help: "Total number of errors by type and component",
		}, []string{"type", "component"}),

		panicsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactbox_panics_total",
			Help: "Total number of recovered panics",
		}),

		rateLimitBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbox_rate_limit_blocked_total",
			Help: "Total number of requests blocked by rate limiting",
		}, []string{"endpoint"}),

		wsConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "contactbox_websocket_connections",
			Help: "Current number of WebSocket connections",
		}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbox_cache_operations_total",
			Help: "Cache operations by result (hit/miss)",
		}, []string{"result"}),

		memoryUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "contactbox_memory_usage_bytes",
			Help: "Current heap allocation in bytes",
		}),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int64) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if responseSize > 0 {
		m.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordError 记录一次错误
func (m *Metrics) RecordError(errType, component string) {
	m.errorsTotal.WithLabelValues(errType, component).Inc()
}

// RecordPanic 记录一次 panic 恢复
func (m *Metrics) RecordPanic() {
	m.panicsTotal.Inc()
}

// RecordMessageCreated 记录一次留言创建
func (m *Metrics) RecordMessageCreated() {
	m.messagesCreated.Inc()
}

// RecordMessageRead 记录一次留言标记已读
func (m *Metrics) RecordMessageRead() {
	m.messagesRead.Inc()
}

// RecordMessageDeleted 记录一次留言删除
func (m *Metrics) RecordMessageDeleted() {
	m.messagesDeleted.Inc()
}

// RecordUserCreated 记录一次用户创建
func (m *Metrics) RecordUserCreated() {
	m.usersCreated.Inc()
}

// RecordRateLimitBlock 记录一次限流拦截
func (m *Metrics) RecordRateLimitBlock(endpoint string) {
	m.rateLimitBlocked.WithLabelValues(endpoint).Inc()
}

// RecordCacheHit 记录一次缓存命中
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.WithLabelValues("hit").Inc()
}

// RecordCacheMiss 记录一次缓存未命中
func (m *Metrics) RecordCacheMiss() {
	m.cacheHits.WithLabelValues("miss").Inc()
}

// UpdateMessageCounts 更新留言存量指标
func (m *Metrics) UpdateMessageCounts(total, unread int64) {
	m.messagesTotal.Set(float64(total))
	m.messagesUnread.Set(float64(unread))
}

// WebSocketConnected 记录 WebSocket 连接建立
func (m *Metrics) WebSocketConnected() {
	m.wsConnections.Inc()
}

// WebSocketDisconnected 记录 WebSocket 连接断开
func (m *Metrics) WebSocketDisconnected() {
	m.wsConnections.Dec()
}

// UpdateMemoryUsage 更新内存占用指标
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.memoryUsage.Set(float64(bytes))
}
