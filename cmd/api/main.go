package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/sheetboard-api/internal/config"
	"github.com/sheetboard-api/internal/infrastructure/dynamo"
	"github.com/sheetboard-api/internal/infrastructure/excel"
	jwtinfra "github.com/sheetboard-api/internal/infrastructure/jwt"
	"github.com/sheetboard-api/internal/infrastructure/localfs"
	redisinfra "github.com/sheetboard-api/internal/infrastructure/redis"
	s3infra "github.com/sheetboard-api/internal/infrastructure/s3"
	"github.com/sheetboard-api/internal/infrastructure/smtp"
	"github.com/sheetboard-api/internal/pkg/logger"
	transporthttp "github.com/sheetboard-api/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	if envErr != nil {
		zl.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		zl.Fatal("dynamodb client", zap.Error(err))
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, zl.Named("bootstrap"))

	otpRepo, err := newOTPRepo(ctx, cfg, dynamoClient)
	if err != nil {
		zl.Fatal("otp store", zap.String("backend", cfg.OTPBackend), zap.Error(err))
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		zl.Fatal("object store", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		zl.Fatal("jwt provider", zap.Error(err))
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:     otpRepo,
		FileRepo:    dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		Objects:     objects,
		Sheets:      excel.NewReader(cfg.MaxUploadBytes),
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
		Logger:      zl,
	}

	router, stopRouter := transporthttp.NewRouter(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("otp_backend", cfg.OTPBackend),
			zap.String("storage_backend", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

func newOTPRepo(ctx context.Context, cfg *config.Config, client *dynamodb.Client) (transporthttp.OTPRepository, error) {
	switch cfg.OTPBackend {
	case "redis":
		rc, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return redisinfra.NewOTPStore(rc), nil
	case "dynamo", "":
		return dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPs), nil
	default:
		return nil, fmt.Errorf("unknown OTP_BACKEND %q", cfg.OTPBackend)
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) (transporthttp.ObjectStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		sc, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3infra.NewStore(sc, cfg.S3BucketName), nil
	case "local", "":
		st, err := localfs.NewStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
