package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	Destination               Destination
	DestinationConfigPath     string
	Environment               string
	Hostname                  string
	MDBToolsDir               string
	ServerHost                string
	ServerPort                int
	WorkerPollInterval        time.Duration
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
		Hostname:                  hostname,
		ServerPort:                6980,
		WorkerPollInterval:        5 * time.Second,
	}

	env := os.Getenv(environmentENV)
	switch env {
	case "development", "":
		cfg.Environment = "development"
		loadDevelopmentConfig(cfg)
	case "test":
		cfg.Environment = "test"
		loadTestConfig(cfg)
	case "production":
		cfg.Environment = "production"
		loadProductionConfig(cfg)
	}

	if err := LoadDestination(cfg.DestinationConfigPath, &cfg.Destination); err != nil {
		return nil, err
	}

	return cfg, nil
}
