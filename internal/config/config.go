package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	UploadMaxSize   int64
	StaticFilesPath string
	MigrationsPath  string
	BenchmarksPath  string

	AppURL             string
	GoogleClientID     string
	GoogleClientSecret string

	Analyzer            string
	GeminiAPIKey        string
	GeminiAnalysisModel string
	GeminiVisionModel   string

	AWSRegion    string
	SESFromEmail string
	ReportEmail  string

	TelegramBotToken string
	TelegramChatID   string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is picked up first.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./literacylead.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SessionDuration: 24 * time.Hour,
		UploadMaxSize:   10 * 1024 * 1024, // 10MB, scanned pages are large
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		BenchmarksPath:  getEnv("BENCHMARKS_PATH", ""),

		AppURL:             getEnv("APP_URL", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		Analyzer:            getEnv("ANALYZER", "local"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiAnalysisModel: getEnv("GEMINI_ANALYSIS_MODEL", ""),
		GeminiVisionModel:   getEnv("GEMINI_VISION_MODEL", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		ReportEmail:  getEnv("REPORT_EMAIL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
