package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// CRM (GoHighLevel-style) credentials
	GHLBaseURL      string
	GHLClientID     string
	GHLClientSecret string
	GHLRedirectURI  string

	// Venue directory collaborator
	DirectoryURL    string
	DirectoryAPIKey string

	// Ledger warehouse (Postgres) export
	LedgerPGDSN    string
	ExportSchedule string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "guestsync"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "guestsync"),

		GHLBaseURL:      getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"),
		GHLClientID:     getEnv("GHL_CLIENT_ID", ""),
		GHLClientSecret: getEnv("GHL_CLIENT_SECRET", ""),
		GHLRedirectURI:  getEnv("GHL_REDIRECT_URI", ""),

		DirectoryURL:    getEnv("DIRECTORY_URL", ""),
		DirectoryAPIKey: getEnv("DIRECTORY_API_KEY", ""),

		LedgerPGDSN:    getEnv("LEDGER_PG_DSN", ""),
		ExportSchedule: getEnv("EXPORT_SCHEDULE", "@hourly"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
