package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
	"github.com/ameer851/axix-finance-sub003/internal/auth"
	"github.com/ameer851/axix-finance-sub003/internal/config"
	cronrunner "github.com/ameer851/axix-finance-sub003/internal/cron"
	"github.com/ameer851/axix-finance-sub003/internal/db"
	"github.com/ameer851/axix-finance-sub003/internal/handler"
	"github.com/ameer851/axix-finance-sub003/internal/lock"
	"github.com/ameer851/axix-finance-sub003/internal/logger"
	"github.com/ameer851/axix-finance-sub003/internal/notification"
	"github.com/ameer851/axix-finance-sub003/internal/paas"
	gormrepository "github.com/ameer851/axix-finance-sub003/internal/repository/gorm"
	"github.com/ameer851/axix-finance-sub003/internal/service"

	_ "github.com/ameer851/axix-finance-sub003/docs"
)

func main() {
	cfgPath := os.Getenv("ACCRUAL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ACCRUAL_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log, "accrual")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		if err := db.Migrate(ctx, dbConn, logger); err != nil {
			logger.Fatal("sql migrations failed", zap.Error(err))
		}
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(ctx); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	cutover, err := cfg.Accrual.Cutover()
	if err != nil {
		logger.Fatal("invalid accrual policy cutover", zap.Error(err))
	}
	job := &accrual.Job{
		Store:        store,
		Notifier:     newNotifier(cfg.Notification.Email, logger),
		Locker:       newLocker(cfg, dbConn, logger),
		Logger:       logger,
		Cutover:      cutover,
		LockKey:      cfg.Accrual.LockKey,
		EmailTimeout: cfg.Accrual.EmailTimeout,
	}

	paasClient := initPaaSClient(ctx, cfg.PaaS, logger)
	jobSvc := &service.JobService{
		Job:      job,
		Runs:     store,
		Settings: settingsSvc,
		PaaS:     paasClient,
		Logger:   logger,
		Defaults: service.JobDefaults{
			SendIncrementEmails:         cfg.Accrual.SendIncrementEmails,
			SendCompletionEmails:        cfg.Accrual.SendCompletionEmails,
			ForceCreditOnCompletionOnly: cfg.Accrual.ForceCreditOnCompletionOnly,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(paas.WriteAuditMiddleware(paasClient, logger))

	healthHandler := &handler.HealthHandler{Ping: func(ctx context.Context) error { return db.Ping(ctx, dbConn) }}
	healthHandler.Register(engine)
	paas.RegisterDocs(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var apiMiddleware []gin.HandlerFunc
	if cfg.Auth.Disabled {
		logger.Warn("admin api auth disabled")
	} else {
		if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
			logger.Fatal("auth.jwt_secret is required unless auth.disabled is set")
		}
		jwt := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer}
		apiMiddleware = append(apiMiddleware, auth.RequireRole(jwt, auth.RoleAdmin))
	}
	api := engine.Group("/api/v1", apiMiddleware...)
	(&handler.JobsHandler{Jobs: jobSvc}).Register(api)
	(&handler.SystemSettingsHandler{Repo: store, Settings: settingsSvc}).Register(api)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.DailyAccrual, jobSvc.RunScheduled); err != nil {
			logger.Fatal("cron register daily accrual failed", zap.String("spec", cfg.Cron.DailyAccrual), zap.Error(err))
		}
		logger.Info("daily accrual scheduled", zap.String("spec", cfg.Cron.DailyAccrual))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newNotifier(cfg config.EmailConfig, logger *zap.Logger) accrual.Notifier {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		logger.Info("email relay not configured, investment emails disabled")
		return notification.Noop{}
	}
	return &notification.EmailNotifier{
		URL:      cfg.WebhookURL,
		From:     cfg.From,
		Token:    cfg.Token,
		HTTP:     &http.Client{Timeout: cfg.Timeout},
		Renderer: notification.NewRenderer(cfg.Locale),
	}
}

func newLocker(cfg config.Config, dbConn *db.DB, logger *zap.Logger) accrual.Locker {
	switch strings.ToLower(strings.TrimSpace(cfg.Lock.Backend)) {
	case "redis":
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			logger.Fatal("lock.backend=redis requires redis.addr")
		}
		return lock.NewRedisLocker(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Lock.RedisTTL, logger)
	case "memory":
		return lock.NewMemoryLocker()
	case "none", "off":
		logger.Warn("job lock disabled, relying on row guards only")
		return nil
	default:
		return lock.NewPostgresLocker(dbConn.Gorm, logger)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func initPaaSClient(ctx context.Context, cfg config.PaaSConfig, logger *zap.Logger) *paas.Client {
	p := paas.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Agent)
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		logger.Warn("paas login failed (run audit disabled)", zap.Error(err))
		return nil
	}
	logger.Info("paas login ok")
	return p
}
