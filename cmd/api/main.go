package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/attachment"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/draft"
	"backoffice/internal/handler"
	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/orderapi"
	"backoffice/internal/policy"
	"backoffice/internal/push"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/view"
	"backoffice/internal/websocket"
	"backoffice/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Back-office Orders Gateway API
// @version         1.0
// @description     Role-scoped order authorization pages backed by the Order API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "backoffice"}).Error(context.Background(), "failed to load config", err)
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: "backoffice",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, cfg.DB.ConnString(), log)
	if err != nil {
		log.Error(ctx, "database connection failed", err)
		return err
	}
	log.Info(ctx, "connected to PostgreSQL")

	// Drafts are optional; the pages work without them.
	drafts, err := draft.New(ctx, cfg.Redis)
	if err != nil {
		log.Error(ctx, "redis unavailable, draft routes disabled", err)
		drafts = nil
	} else {
		defer drafts.Close()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	client, err := orderapi.NewClient(cfg.OrderAPI, m)
	if err != nil {
		log.Error(ctx, "invalid order api config", err)
		return err
	}

	broker := push.NewBroker()
	listener := push.NewListener(cfg.Push, broker, log)
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "push listener stopped", err)
		}
	}()

	hub := websocket.NewHub(cfg.CORS.AllowOrigins, log)
	go hub.Run(ctx)
	stopForward := hub.Forward(broker)
	defer stopForward()

	registry := view.NewRegistry(policy.Scopes, model.Families, view.Options{
		Source:         client,
		Broker:         broker,
		Notifier:       hub,
		Metrics:        m,
		Log:            log,
		PollInterval:   cfg.View.PollInterval,
		ReloadDebounce: cfg.View.ReloadDebounce,
	})
	if err := registry.Open(ctx); err != nil {
		log.Error(ctx, "failed to open order views", err)
		return err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.Error(context.Background(), "failed to close order views", err)
		}
	}()

	logService := service.NewTransitionLogService(repository.NewTransitionLogRepository(db))
	executor := service.NewTransitionExecutor(service.ExecutorDeps{
		Gateway:  client,
		Patcher:  registry,
		Merger:   attachment.NewPDFMerger(),
		Notifier: hub,
		Logs:     logService,
		Metrics:  m,
		Log:      log,
	})

	secret := []byte(cfg.JWT.Secret)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c, secret)
	})

	checks := map[string]handler.Check{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	api := router.Group("")
	for _, scope := range policy.Scopes {
		handler.NewOrderHandler(scope, registry, executor, client, secret).RegisterRoutes(api)
	}
	if drafts != nil {
		handler.NewDraftHandler(drafts, secret, policy.RoleJefeProyecto, policy.RoleGerencia, policy.RoleContabilidad).RegisterRoutes(api)
		checks["redis"] = drafts.Ping
	}
	handler.NewTransitionLogHandler(logService, secret, policy.RoleGerencia).RegisterRoutes(api)
	handler.NewHealthHandler(checks).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening on :"+cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error(ctx, "server failed", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "graceful shutdown failed", err)
		return err
	}
	return nil
}
