package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contactbox/backend/internal/health"
	"contactbox/backend/internal/middleware"
	"contactbox/backend/internal/monitoring"
	"contactbox/backend/internal/service"
	"contactbox/backend/internal/websocket"
)

// Handler 聚合所有 HTTP 处理方法的依赖
type Handler struct {
	messages *service.MessageService
	users    *service.UserService
	health   *health.Checker
	hub      *websocket.Hub
	logger   *zap.Logger
}

// RouterDependencies 构造路由所需的依赖
type RouterDependencies struct {
	Messages    *service.MessageService
	Users       *service.UserService
	Health      *health.Checker
	Hub         *websocket.Hub        // 可为 nil，关闭推送
	Metrics     *monitoring.Metrics   // 可为 nil，关闭指标采集
	RateLimiter *middleware.RateLimiter // 可为 nil，关闭提交限流
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter 创建统一路由
//
// 留言和用户两个集合走同一套分发逻辑与错误约定；
// 所有响应（包括错误响应）都带 CORS 头，OPTIONS 一律 200。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	if deps.Metrics != nil {
		mon := middleware.NewMonitoring(deps.Metrics)
		router.Use(mon.HTTPMetrics())
		router.Use(mon.BusinessMetrics())
	}

	allowAll := false
	for _, origin := range deps.CORSOrigins {
		if origin == "*" {
			allowAll = true
		}
	}

	corsConfig := cors.Config{
		AllowMethods:              []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.CORSOrigins
	}
	router.Use(cors.New(corsConfig))
	router.Use(compatCORSHeaders(allowAll))

	handler := &Handler{
		messages: deps.Messages,
		users:    deps.Users,
		health:   deps.Health,
		hub:      deps.Hub,
		logger:   deps.Logger,
	}

	api := router.Group("/api")
	{
		messages := api.Group("/messages")
		{
			messages.GET("", handler.listMessages)
			if deps.RateLimiter != nil {
				messages.POST("", deps.RateLimiter.Handler(), handler.createMessage)
			} else {
				messages.POST("", handler.createMessage)
			}
			messages.GET("/:id", handler.getMessage)
			messages.PATCH("/:id", handler.updateMessage)
			messages.DELETE("/:id", handler.deleteMessage)
		}

		users := api.Group("/users")
		{
			users.GET("", handler.listUsers)
			users.POST("", handler.createUser)
			users.GET("/:id", handler.getUser)
			users.PATCH("/:id", handler.updateUser)
			users.DELETE("/:id", handler.deleteUser)
		}

		api.GET("/health", handler.healthStatus)

		if deps.Hub != nil {
			api.GET("/ws", deps.Hub.HandleConnection)
		}
	}

	// 运维端点不挂在 /api 下
	if deps.Health != nil {
		router.GET("/health/live", gin.WrapF(deps.Health.LiveEndpoint()))
		router.GET("/health/ready", gin.WrapF(deps.Health.ReadyEndpoint()))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// 未匹配的路径返回带诊断信息的 404
	router.NoRoute(RouteNotFound)

	return router
}

// compatCORSHeaders 旧版前端期望每个响应都携带 CORS 头，
// 且任意 OPTIONS 请求（不限于合法预检）都返回 200
func compatCORSHeaders(allowAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowAll && c.Writer.Header().Get("Access-Control-Allow-Origin") == "" {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// healthStatus 兼容旧版管理后台的健康检查端点
// GET /api/health
func (h *Handler) healthStatus(c *gin.Context) {
	OK(c, h.health.Status())
}
