package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/sit-transcript-api/api/swagger"
	"github.com/noah-isme/sit-transcript-api/internal/handler"
	"github.com/noah-isme/sit-transcript-api/internal/repository"
	"github.com/noah-isme/sit-transcript-api/internal/router"
	"github.com/noah-isme/sit-transcript-api/internal/service"
	"github.com/noah-isme/sit-transcript-api/pkg/config"
	"github.com/noah-isme/sit-transcript-api/pkg/database"
	"github.com/noah-isme/sit-transcript-api/pkg/logger"
	"github.com/noah-isme/sit-transcript-api/pkg/storage"
)

// @title SIT Transcript API
// @version 0.1.0
// @description Transcript request management for students and academic admins
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	store, err := storage.NewFileStore(cfg.Storage.BaseDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object store", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "sit-transcript-api",
	})
	downloadBase := strings.TrimRight(cfg.APIPrefix, "/") + "/requests"
	requestSvc := service.NewRequestService(requestRepo, store, validate, logr, service.RequestServiceConfig{
		PublicBaseURL:    cfg.Storage.PublicBaseURL,
		MaxUploadBytes:   cfg.Storage.MaxUploadBytes,
		TranscriptMIMEs:  cfg.Storage.TranscriptMIMEs,
		SpreadsheetMIMEs: cfg.Storage.SpreadsheetMIMEs,
		DownloadBasePath: downloadBase,
	})
	settingSvc := service.NewSettingService(settingRepo, logr)
	userSvc := service.NewUserService(userRepo, requestRepo, logr)
	exportSvc := service.NewExportService(requestRepo, store, signer, logr, service.ExportServiceConfig{
		DownloadBasePath: strings.TrimRight(cfg.APIPrefix, "/") + "/exports/download",
	})
	metricsSvc := service.NewMetricsService()
	requestSvc.AttachMetrics(metricsSvc)

	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   cfg.Cookie.Name,
			Domain: cfg.Cookie.Domain,
			Secure: cfg.Cookie.Secure,
			MaxAge: cfg.JWT.Expiration,
		}),
		Request: handler.NewRequestHandler(requestSvc, cfg.Storage.MaxUploadBytes),
		Setting: handler.NewSettingHandler(settingSvc),
		User:    handler.NewUserHandler(userSvc),
		Export:  handler.NewExportHandler(exportSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc),
	}

	r := router.New(cfg, logr, authSvc, metricsSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
