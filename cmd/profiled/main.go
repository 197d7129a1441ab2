package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"profiled/internal/adapters/api"
	"profiled/internal/adapters/cache"
	"profiled/internal/adapters/repository"
	"profiled/internal/config"
	"profiled/internal/core/ports"
	"profiled/internal/core/services"
	"profiled/internal/infrastructure/metrics"
	"profiled/internal/logs"
)

func main() {
	cfg := config.MustLoad()
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logs.Logger

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("unable to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		log.Warnf("could not ping database: %v", err)
	}
	metrics.DBConnectionsActive.Set(float64(db.Stats().OpenConnections))

	repo := repository.NewPostgresRepository(db)

	var templateCache ports.TemplateCache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(context.Background()); err != nil {
			log.Warnf("redis unreachable, falling back to in-process template cache: %v", err)
		} else {
			templateCache = rc
			defer rc.Close()
		}
	}
	if templateCache == nil {
		templateCache = cache.NewMemoryCache()
	}

	profileSvc := services.NewProfileService(repo, services.NoopEncryptor{})
	templateSvc := services.NewTemplateService(repo, profileSvc, templateCache)

	handler := api.NewAPIHandler(profileSvc, templateSvc, repo, repo, templateCache,
		cfg.Auth.Pepper, cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	var chain http.Handler = mux
	chain = api.MetricsMW(chain)
	chain = api.MaxBody(cfg.Server.MaxRequestBytes)(chain)
	if cfg.Server.RateLimitRPS > 0 {
		chain = api.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)(chain)
	}
	chain = api.CORS(chain)
	chain = api.Recoverer(chain)
	chain = api.LoggerMW(chain)
	chain = api.RequestID(chain)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Address, cfg.Server.HTTPPort),
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("management API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}
