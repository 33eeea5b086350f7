package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/domain"
	"storyweaver/internal/handler"
	"storyweaver/internal/logger"
	"storyweaver/internal/middleware"
	"storyweaver/internal/nav"
	"storyweaver/internal/pipeline"
	"storyweaver/internal/repository"
	"storyweaver/internal/service"
	"storyweaver/internal/session"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))
	zap.L().Info("Configuration loaded")

	// --- Stores ---
	userRepo, err := repository.NewFileUserRepository(cfg.UsersFile, log.Named("FileUserRepo"))
	if err != nil {
		zap.L().Fatal("Failed to open user store", zap.Error(err))
	}

	artifacts, err := artifact.NewFileStore(cfg.ArtifactsDir, log.Named("ArtifactStore"))
	if err != nil {
		zap.L().Fatal("Failed to open artifact store", zap.Error(err))
	}

	sessions := session.NewStore(log)

	// --- Services & Pipeline ---
	authSvc := service.NewAuthService(userRepo, cfg.PasswordPepper, log)

	aiClient, err := service.NewAIClient(cfg, log.Named("AIClient"))
	if err != nil {
		zap.L().Fatal("Failed to create AI client", zap.Error(err))
	}

	sequencer := pipeline.NewSequencer(
		service.NewSegmenter(aiClient, log),
		service.NewNarrationSynthesizer(cfg, artifacts, log),
		service.NewImageGenerator(cfg, artifacts, log),
		service.NewVideoCompositor(cfg, artifacts, log),
		log,
	)

	controller := nav.NewController(authSvc, sequencer, domain.SceneBounds{
		Min:     cfg.MinScenes,
		Max:     cfg.MaxScenes,
		Default: cfg.DefaultScenes,
	}, log)

	apiHandler := handler.NewHandler(controller, sessions, artifacts, cfg, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.ZapLoggingMiddlewareForGin(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	apiHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}
