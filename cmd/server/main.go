package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/daymate/api/handler"
	"github.com/fastygo/daymate/internal/bootstrap"
	"github.com/fastygo/daymate/internal/config"
	"github.com/fastygo/daymate/internal/infrastructure/monitor"
	"github.com/fastygo/daymate/internal/middleware"
	"github.com/fastygo/daymate/internal/router"
	"github.com/fastygo/daymate/internal/services/lifecycle"
	"github.com/fastygo/daymate/pkg/httpcontext"
	"github.com/fastygo/daymate/pkg/logger"
	taskUC "github.com/fastygo/daymate/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := bootstrap.OpenStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open task store", zap.Error(err))
	}
	manager.Register("store", store.Close)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)
	store.RegisterChecks(mon)
	if err := mon.Start(); err != nil {
		zapLogger.Fatal("failed to start health monitor", zap.Error(err))
	}
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskUseCase := taskUC.New(store.Tasks, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.Origins = cfg.CORS.AllowedOrigins

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.AccessLog(zapLogger),
			middleware.CORS(corsConfig),
		),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", store.Driver),
			zap.Bool("cache", cfg.Cache.Enabled),
			zap.Bool("auth", cfg.JWT.Secret != ""),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
