package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	localcache "contactbox/backend/internal/cache"
	"contactbox/backend/internal/config"
	"contactbox/backend/internal/health"
	"contactbox/backend/internal/logger"
	"contactbox/backend/internal/middleware"
	"contactbox/backend/internal/monitoring"
	"contactbox/backend/internal/service"
	"contactbox/backend/internal/storage"
	cachestore "contactbox/backend/internal/storage/cache"
	"contactbox/backend/internal/storage/lazy"
	"contactbox/backend/internal/storage/memory"
	redisclient "contactbox/backend/internal/storage/redis"
	sqlstore "contactbox/backend/internal/storage/sql"
	httptransport "contactbox/backend/internal/transport/http"
	"contactbox/backend/internal/websocket"
)

// main 启动留言管理后台的 HTTP API 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting contactbox server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	store := buildStore(cfg, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	}()

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewChecker(store, log)

	alertManager := monitoring.NewAlertManager(log)
	alertManager.RegisterDefaultRules(store)

	// 初始化服务层
	messageService := service.NewMessageService(store, cfg.Admin.ListLimit, log)
	userService := service.NewUserService(store, log)

	// 开发演示数据
	if cfg.Admin.SeedSampleData {
		if err := messageService.SeedSampleData(); err != nil {
			log.Warn("failed to seed sample data", zap.Error(err))
		}
	}

	// WebSocket 推送：新留言实时通知管理后台，减少轮询延迟
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, log)
	wsHub.OnConnect = metrics.WebSocketConnected
	wsHub.OnDisconnect = metrics.WebSocketDisconnected

	// 公开提交接口限流
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst)

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Messages:    messageService,
		Users:       userService,
		Health:      healthChecker,
		Hub:         wsHub,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Logger:      log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// WebSocket 广播循环
	group.Go(func() error {
		wsHub.Run(groupCtx)
		return nil
	})

	// 告警规则评估
	group.Go(func() error {
		alertManager.Run(groupCtx, 30*time.Second)
		return nil
	})

	// 周期刷新存量指标
	group.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if total, unread, err := messageService.Stats(); err == nil {
					metrics.UpdateMessageCounts(total, unread)
				}

				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				metrics.UpdateMemoryUsage(m.Alloc)
			}
		}
	})

	// 优雅关闭
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}
	log.Info("server stopped")
}

// buildStore 根据配置组装存储栈
//
// 未配置数据库时使用内存存储；配置了数据库时用懒加载代理包装
// SQL 存储，首个请求才真正建连，建连失败后续请求会重试。
// 启用缓存时再叠加 L1/L2 读缓存装饰层。
func buildStore(cfg *config.Config, log *zap.Logger) storage.Store {
	var store storage.Store

	if cfg.Database.Type != "" {
		dbCfg := cfg.Database
		store = lazy.NewStore(func() (storage.Store, error) {
			st, err := sqlstore.NewStore(dbCfg)
			if err != nil {
				log.Error("failed to open database", zap.String("type", dbCfg.Type), zap.Error(err))
				return nil, err
			}
			log.Info("database connection established", zap.String("type", dbCfg.Type))
			return st, nil
		})
		log.Info("using lazy database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}

	if !cfg.Cache.Enabled {
		return store
	}

	local := localcache.NewLocalCache(cfg.Cache.LocalSize, cfg.Cache.TTL)

	client, err := buildRedis(cfg)
	if err != nil {
		log.Warn("redis unavailable, falling back to local cache only", zap.Error(err))
	}

	log.Info("read cache enabled",
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Bool("redis", client != nil),
	)
	return cachestore.NewStore(store, local, client, cfg.Cache.TTL, log)
}

func buildRedis(cfg *config.Config) (*goredis.Client, error) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}
	return redisclient.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
}
