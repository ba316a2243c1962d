package config

import "time"

func loadTestConfig(cfg *Config) {
	cfg.AssetHost = "storage.skolio.test"
	cfg.AuthBaseURL = "http://auth.skolio.test"
	cfg.CatalogDatabasePath = "file::memory:?cache=shared"
	cfg.ContentAPIBaseURL = "http://content.skolio.test"
	cfg.ImportThrottle = 0
	cfg.LegacyAPIBaseURL = "http://legacy.skolio.test"
	cfg.LegacyUserCode = "test-code"
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	cfg.HTTPTimeout = 5 * time.Second
	cfg.StorageBaseURL = "http://storage.skolio.test"
}
