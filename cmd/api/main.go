package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"launchpad/api/internal/advisor"
	"launchpad/api/internal/app"
	"launchpad/api/internal/archive"
	"launchpad/api/internal/config"
	"launchpad/api/internal/engagement"
	"launchpad/api/internal/search"
	"launchpad/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
		searchService.ReindexAllFromPG(ctx)
	}

	var board *engagement.Board
	if strings.TrimSpace(cfg.RedisURL) != "" {
		board, err = engagement.NewBoard(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer board.Close()
		log.Printf("Engagement leaderboard enabled")
	} else {
		log.Printf("REDIS_URL not set, engagement leaderboard disabled")
	}

	var archiveService *archive.Service
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		archiveService, err = archive.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		log.Printf("Promotion archive enabled (bucket %s)", cfg.MinioBucket)
	} else {
		log.Printf("MINIO_ENDPOINT not set, promotion archive disabled")
	}

	var rubricAdvisor *advisor.Client
	if strings.TrimSpace(cfg.AdvisorURL) != "" {
		rubricAdvisor = advisor.New(cfg.AdvisorURL, cfg.AdvisorKey, cfg.AdvisorModel, cfg.AdvisorTimeout)
		log.Printf("Rubric advisor enabled (model %s)", cfg.AdvisorModel)
	} else {
		log.Printf("ADVISOR_URL not set, rubric advisor disabled")
	}

	service := app.New(cfg, dataStore, rubricAdvisor, archiveService, searchService, board)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Launchpad API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
