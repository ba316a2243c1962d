package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.AssetHost = envOr("ASSET_HOST", "storage.skolio.cz")
	cfg.AuthBaseURL = os.Getenv("AUTH_API_URL")
	cfg.CatalogDatabasePath = envOr("CATALOG_DATABASE_PATH", "/data/catalog.sqlite")
	cfg.ContentAPIBaseURL = os.Getenv("CONTENT_API_URL")
	cfg.LegacyAPIBaseURL = os.Getenv("LEGACY_API_URL")
	cfg.LegacyUserCode = os.Getenv("LEGACY_USER_CODE")
	cfg.ServerHost = "0.0.0.0"
	cfg.StorageBaseURL = os.Getenv("STORAGE_API_URL")
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		cfg.StorageBucket = bucket
	}
}
