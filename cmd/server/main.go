package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/handler"
	"github.com/fxhedge/hedgegate/internal/middleware"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/repository"
	"github.com/fxhedge/hedgegate/internal/service"
	"github.com/fxhedge/hedgegate/internal/telemetry"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	env := config.EnvMap(os.Environ())

	// 2. Initialize Persistence (Postgres / Redis 均为可选)
	var db *gorm.DB
	if cfg.Database.DSN != "" {
		db, err = repository.NewDB(cfg)
		if err == nil {
			logger.Info("connected to PostgreSQL")
		} else {
			logger.Error("failed to connect to DB, falling back to redis/memory stores", "error", err)
			db = nil
		}
	}
	var rdb *repository.RedisClient
	if cfg.Redis.Addr != "" {
		rdb, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("connected to Redis")
		} else {
			logger.Error("failed to connect to Redis, falling back to memory", "error", err)
			rdb = nil
		}
	}

	// Risk usage: Redis > Postgres > Memory
	var usageRepo service.UsageRepo
	switch {
	case rdb != nil:
		usageRepo = repository.NewRedisUsageRepo(rdb)
	case db != nil:
		usageRepo = repository.NewPostgresUsageRepo(db)
	default:
		usageRepo = service.NewRiskUsageStore()
	}

	// Idempotency: Redis > Postgres > Memory
	var idemStore middleware.IdempotencyStore
	switch {
	case rdb != nil:
		idemStore = repository.NewRedisIdempotencyStore(rdb, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
	case db != nil:
		idemStore = repository.NewPostgresIdempotencyStore(db)
	default:
		idemStore = middleware.NewInMemIdempotencyStore()
	}

	// Audit / telemetry history: Postgres > Redis > 仅本地文件与内存
	var auditRepo service.AuditRepo
	var telemetryStore telemetry.Store
	switch {
	case db != nil:
		auditRepo = repository.NewPostgresAuditRepo(db)
		telemetryStore = repository.NewPostgresTelemetryRepo(db)
	case rdb != nil:
		auditRepo = repository.NewRedisAuditRepo(rdb, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax)
		telemetryStore = repository.NewRedisTelemetryRepo(rdb, cfg.Telemetry.ListKey, cfg.Telemetry.ListMax)
	}

	var tenantRepo service.TenantRepoCRUD
	if db != nil {
		tenantRepo = repository.NewPostgresTenantRepo(db)
	}

	// 3. Telemetry pipeline
	recorder, err := telemetry.NewRecorder(telemetry.RecorderOptions{
		LogDir:     cfg.Telemetry.LogDir,
		BufferSize: cfg.Telemetry.BufferSize,
		Store:      telemetryStore,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry recorder: %v", err)
	}
	hub := telemetry.NewHub()
	sinks := telemetry.Fanout{
		telemetry.LogSink{Logger: logger.With("component", "gateway_telemetry")},
		telemetry.PrometheusSink{},
		recorder,
		hub,
	}

	var tracer trace.Tracer
	var propagator propagation.TextMapPropagator
	shutdownTracing := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		tracer, shutdownTracing, err = setupTracing(cfg.Tracing.ServiceName)
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		propagator = propagation.TraceContext{}
	}

	// 4. Gateway clients: portal 与 admin 控制台各自一份配置
	base := gateway.Config{
		Tracer:        tracer,
		Propagator:    propagator,
		EmitTelemetry: sinks.Emit,
		GetUserID:     gateway.UserIDFromContext,
		Environment:   cfg.Server.Environment,
	}
	portalClient, err := newGatewayClient(cfg.Gateway.Portal, env, base)
	if err != nil {
		log.Fatalf("Failed to initialize portal gateway client: %v", err)
	}
	adminClient, err := newGatewayClient(cfg.Gateway.Admin, env, base)
	if err != nil {
		log.Fatalf("Failed to initialize admin gateway client: %v", err)
	}

	// 5. Core Services
	tenantManager := service.NewTenantManager(cfg, tenantRepo)
	tenantSvc := service.NewTenantService(tenantManager, tenantRepo)
	riskEngine := service.NewRiskEngine(usageRepo)
	portalSvc := service.NewHedgeService(portalClient, riskEngine)
	adminSvc := service.NewHedgeService(adminClient, riskEngine)

	auditSvc, err := service.NewAuditService("./logs", auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// 6. Handlers
	portalHedge := handler.NewHedgeHandler(portalSvc)
	adminHedge := handler.NewHedgeHandler(adminSvc)
	telemetryHandler := handler.NewTelemetryHandler(recorder, hub)
	auditHandler := handler.NewAuditHandler(auditSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)

	// 7. Router
	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))
	r.Use(middleware.UserContextMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        "hedgegate",
			"portal_gateway": portalSvc.Enabled(),
			"admin_gateway":  adminSvc.Enabled(),
			"read_only":      cfg.Server.ReadOnly,
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	executionGuards := []gin.HandlerFunc{
		middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly),
		middleware.IdempotencyMiddleware(idemStore),
	}

	// Client portal
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, tenantManager))
	v1.Use(middleware.RateLimitMiddleware(tenantManager))
	{
		v1.POST("/quotes/binding", portalHedge.Quote)
		v1.POST("/risk/plan", portalHedge.Plan)
		v1.Group("/execution", executionGuards...).POST("/orders", portalHedge.Execute)
		v1.GET("/telemetry", telemetryHandler.ListOwn)
		v1.GET("/audit", auditHandler.List)
	}

	// Admin control room
	admin := r.Group("/admin/v1")
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.POST("/quotes/binding", adminHedge.Quote)
		admin.POST("/risk/plan", adminHedge.Plan)
		admin.Group("/execution", executionGuards...).POST("/orders", adminHedge.Execute)
		admin.GET("/telemetry", telemetryHandler.List)
		admin.GET("/telemetry/stream", telemetryHandler.Stream)
		admin.GET("/audit", auditHandler.List)
		admin.GET("/tenants", tenantHandler.List)
		admin.POST("/tenants", tenantHandler.Create)
		admin.GET("/tenants/:id", tenantHandler.Get)
		admin.PUT("/tenants/:id", tenantHandler.Update)
		admin.DELETE("/tenants/:id", tenantHandler.Delete)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if db != nil {
		go cleanupLoop(ctx, cfg.Database, db)
	}

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("hedgegate started", "port", cfg.Server.Port,
			"portal_gateway", portalSvc.Enabled(), "admin_gateway", adminSvc.Enabled(), "read_only", cfg.Server.ReadOnly)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stop()

	// 超时需覆盖网关最长退避(10s)，在途重试才能完成；之后的 Emit 返回 ErrRecorderClosed
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Close()
	recorder.Close()
	auditSvc.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server exiting")
}

// newGatewayClient returns nil when neither the config section nor
// GATEWAY_ENABLED turns the client on.
func newGatewayClient(section config.GatewayConfig, env map[string]string, base gateway.Config) (service.GatewayClient, error) {
	if !section.Enabled && !config.IsGatewayEnabled(env) {
		return nil, nil
	}
	client, err := gateway.NewWithEnv(gateway.Merge(gateway.FromGatewayConfig(section), base), env)
	if err != nil {
		return nil, err
	}
	return client, nil
}
