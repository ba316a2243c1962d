package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	AssetHost                 string
	AuthBaseURL               string
	CatalogDatabasePath       string
	ContentAPIBaseURL         string
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	HTTPTimeout               time.Duration
	Hostname                  string
	ImportThrottle            time.Duration
	LegacyAPIBaseURL          string
	LegacyUserCode            string
	ServerHost                string
	ServerPort                int
	StorageBaseURL            string
	StorageBucket             string
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		HTTPTimeout:               30 * time.Second,
		Hostname:                  hostname,
		ImportThrottle:            500 * time.Millisecond,
		ServerPort:                3690,
		StorageBucket:             "content",
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	return cfg, nil
}
