// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jobtrail/internal/applications"
	"jobtrail/internal/auth"
	"jobtrail/internal/common/aws"
	"jobtrail/internal/common/config"
	"jobtrail/internal/common/database"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/common/observability"
	"jobtrail/internal/embeddings"
	"jobtrail/internal/listings"
	"jobtrail/internal/scheduler"
	"jobtrail/internal/search"
	"jobtrail/internal/server"
	"jobtrail/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting api server",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	var obs *observability.Observability
	if cfg.Tracing.Enabled {
		obs = observability.New(cfg.App.Name, cfg.Tracing.CollectorEndpoint)
		defer obs.Shutdown()
	}

	ctx := context.Background()

	// --- Datastores ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch init failed", zap.Error(err))
	}
	if err := es.Ping(); err != nil {
		zapLog.Fatal("elasticsearch unreachable", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}

	// --- External collaborators ---
	embedder := embeddings.NewClient(cfg.Embedding)

	source, err := listings.NewClient(cfg.Listings, log)
	if err != nil {
		zapLog.Fatal("listing source init failed", zap.Error(err))
	}

	var mailer auth.Mailer
	if cfg.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Email.Region, cfg.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("ses init failed", zap.Error(err))
		}
		mailer = ses
	}

	// --- Services ---
	store := search.NewESStore(es, cfg.Search.Index, log)
	searchSvc := search.NewService(embedder, store, source, cfg.Search, log)

	trackerIdx := tracker.NewIndex(rdb.Client, log)
	appsSvc := applications.NewService(
		applications.NewRepository(pg, log), trackerIdx, log)

	authSvc := auth.NewService(
		auth.NewRepository(pg, log),
		auth.NewSessions(rdb.Client, cfg.Auth.SessionTTL()),
		mailer,
		cfg.Auth.VerifyBaseURL,
		cfg.Auth.BcryptCost,
		log,
	)

	srv := server.New(cfg, searchSvc, appsSvc, authSvc, trackerIdx, obs, log)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(searchSvc, cfg.Scheduler, log)
		if err := sched.Start(); err != nil {
			zapLog.Fatal("scheduler start failed", zap.Error(err))
		}
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("stopped")
}
