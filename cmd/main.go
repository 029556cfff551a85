package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"affordability-assessment/internal/clients"
	"affordability-assessment/internal/config"
	"affordability-assessment/internal/logger"
	"affordability-assessment/internal/repository"
	"affordability-assessment/internal/scheduler"
	"affordability-assessment/internal/service"
	"affordability-assessment/internal/transport/auth"
	"affordability-assessment/internal/transport/rest"
	"affordability-assessment/internal/transport/websocket"
	"affordability-assessment/pkg/database/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	if envErr != nil {
		logger.Infof("no .env file found, using system env or defaults")
	}

	// top-level context, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := mustInitPostgres(ctx, cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(ctx, cfg.Redis)
	defer redisClient.Close()

	// local storage always backs /files, even when reports go to S3
	storageClient, err := clients.NewLocalStorage(cfg.Storage.ReportDir, cfg.Storage.PublicPrefix, cfg.Storage.ExternalURL)
	if err != nil {
		logger.Fatalf("storage init error: %v", err)
	}
	reportStore := mustInitReportStore(ctx, cfg, storageClient)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	assessmentRepo := repository.NewAssessmentRepository(db)
	tokenRepo := repository.NewAccessTokenRepository(db)

	assessmentSvc := service.NewAssessmentService(assessmentRepo, redisClient, wsClient, cfg.SessionTTL)
	reportSvc := service.NewReportService(assessmentSvc, redisClient, reportStore, wsClient)

	sched, err := scheduler.New(cfg.Storage.CleanupSpec, cfg.Storage.MaxFileAge, storageClient, reportSvc)
	if err != nil {
		logger.Fatalf("scheduler init error: %v", err)
	}
	sched.Start()

	handler := rest.NewHandler(assessmentSvc, reportSvc, storageClient, wsHub)
	router := handler.InitRouterWithAuth(auth.TokenMiddleware(tokenRepo))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Infof("[HTTP] server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			logger.Fatalf("[HTTP] server error: %v", err)
		}
	case sig := <-stop:
		logger.Infof("shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("[HTTP] shutdown error: %v", err)
		}

		sched.Stop()
		// let in-flight reports reach a final status before redis goes away
		reportSvc.Wait()

		// stops the websocket hub
		cancel()

		logger.Infof("shutdown complete")
	}
}

func mustInitPostgres(ctx context.Context, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Fatalf("postgres init error: %v", err)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatalf("postgres migrate error: %v", err)
	}
	return db
}

func mustInitRedis(ctx context.Context, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		logger.Fatalf("redis init error: %v", err)
	}
	return client
}

// mustInitReportStore prefers S3 when an endpoint is configured.
func mustInitReportStore(ctx context.Context, cfg config.AppConfig, storage *clients.StorageClient) service.ReportStore {
	if !cfg.S3Enabled() {
		logger.Infof("[REPORT] storing reports in %s", cfg.Storage.ReportDir)
		return service.NewLocalReportStore(storage)
	}

	s3, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
		Region:          cfg.S3.Region,
		Prefix:          cfg.S3.Prefix,
	})
	if err != nil {
		logger.Fatalf("s3 init error: %v", err)
	}
	logger.Infof("[REPORT] storing reports in bucket %s", cfg.S3.Bucket)
	return service.NewS3ReportStore(s3)
}
