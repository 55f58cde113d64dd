package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"

	"literacylead/internal/analysis"
	"literacylead/internal/config"
	"literacylead/internal/database"
	"literacylead/internal/gemini"
	"literacylead/internal/handlers"
	"literacylead/internal/repository"
	"literacylead/internal/roster"
	"literacylead/internal/security"
	"literacylead/internal/service"
)

func main() {
	// Environment and .env defaults first, then flags on top.
	cfg := config.Load()

	fs := flag.NewFlagSet("literacylead", flag.ExitOnError)
	var (
		port         = fs.String("port", cfg.ServerPort, "port to listen on")
		databaseType = fs.String("database-type", cfg.DatabaseType, "identity database driver (sqlite, postgres, mysql)")
		dbPath       = fs.String("db-path", cfg.DatabasePath, "sqlite database file path")
		staticPath   = fs.String("static-path", cfg.StaticFilesPath, "directory of frontend assets")
		analyzerKind = fs.String("analyzer", cfg.Analyzer, "analysis backend (local or gemini)")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("LITERACYLEAD")); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	cfg.ServerPort = *port
	cfg.DatabaseType = *databaseType
	cfg.DatabasePath = *dbPath
	cfg.StaticFilesPath = *staticPath
	cfg.Analyzer = *analyzerKind

	// Identity database. The roster itself is deliberately in-memory; only
	// users and sessions persist.
	db, err := database.Open(cfg.DatabaseType, cfg.DatabasePath, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Benchmark table for the local rule engine.
	benchmarks := analysis.DefaultBenchmarks()
	if cfg.BenchmarksPath != "" {
		benchmarks, err = analysis.LoadBenchmarks(cfg.BenchmarksPath)
		if err != nil {
			log.Fatalf("Failed to load benchmarks: %v", err)
		}
		log.Printf("Loaded benchmark overrides from %s", cfg.BenchmarksPath)
	}

	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiAnalysisModel, cfg.GeminiVisionModel)

	var analyzer service.Analyzer
	switch cfg.Analyzer {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("ANALYZER=gemini requires GEMINI_API_KEY")
		}
		analyzer = geminiClient
		log.Println("Analysis backend: gemini")
	default:
		analyzer = analysis.NewEngine(benchmarks)
		log.Println("Analysis backend: local rule engine")
	}

	// Repositories and services.
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)

	store := roster.NewStore()
	rosterService := service.NewRosterService(store)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.ReportEmail)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	notifyService := service.NewNotifyService(cfg.TelegramBotToken, cfg.TelegramChatID)

	analysisService := service.NewAnalysisService(store, analyzer, emailService, notifyService)
	ingestService := service.NewIngestService(store, geminiClient, analysisService)

	if rosterService.SeedDemoRoster() {
		log.Println("Seeded demo roster")
		// Free local analysis only; a remote backend should not be billed
		// for a boot-time demo run.
		if cfg.Analyzer != "gemini" {
			analysisService.Trigger()
		}
	}

	// Handlers.
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	reportHandler := handlers.NewReportHandler(analysisService, ingestService, cfg.UploadMaxSize)

	authLimiter := security.NewRateLimiter(20, time.Minute)
	analyzeLimiter := security.NewRateLimiter(5, time.Minute)

	mux := http.NewServeMux()

	// Auth.
	mux.HandleFunc("GET /api/auth/url", handlers.RateLimit(authLimiter, authHandler.GetAuthURL))
	mux.HandleFunc("GET /auth/callback", handlers.RateLimit(authLimiter, authHandler.Callback))
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)

	// Roster.
	mux.HandleFunc("GET /api/students", middleware.RequireAuth(rosterHandler.List))
	mux.HandleFunc("POST /api/students", middleware.RequireAuth(rosterHandler.Create))
	mux.HandleFunc("GET /api/students/{id}", middleware.RequireAuth(rosterHandler.Get))
	mux.HandleFunc("PATCH /api/students/{id}", middleware.RequireAuth(rosterHandler.Update))
	mux.HandleFunc("DELETE /api/students/{id}", middleware.RequireAuth(rosterHandler.Delete))

	// Analysis and ingestion.
	mux.HandleFunc("POST /api/analyze", middleware.RequireAuth(handlers.RateLimit(analyzeLimiter, reportHandler.Analyze)))
	mux.HandleFunc("GET /api/report", middleware.RequireAuth(reportHandler.GetReport))
	mux.HandleFunc("POST /api/ingest", middleware.RequireAuth(handlers.RateLimit(analyzeLimiter, reportHandler.Ingest)))

	// Frontend assets.
	mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticFilesPath)))

	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupExpiredSessions(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
