package config

import (
	"os"
	"strconv"
)

func loadDevelopmentConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.AssetHost = "storage.skolio.dev"
	cfg.AuthBaseURL = "http://localhost:4000/auth"
	cfg.CatalogDatabasePath = "./tmp/catalog.sqlite"
	cfg.ContentAPIBaseURL = "http://localhost:4000/api"
	cfg.DatabaseDebug = true
	cfg.LegacyAPIBaseURL = envOr("LEGACY_API_URL", "http://localhost:4100")
	cfg.LegacyUserCode = os.Getenv("LEGACY_USER_CODE")
	cfg.ServerHost = "127.0.0.1"
	cfg.StorageBaseURL = "http://localhost:4200/storage"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
