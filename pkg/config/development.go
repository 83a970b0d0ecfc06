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

	cfg.DatabaseDebug = true
	cfg.Destination = Destination{
		Host:     "127.0.0.1",
		Database: "warraq",
		User:     "root",
	}
	cfg.DestinationConfigPath = "./tmp/warraq.yaml"
	cfg.ServerHost = "127.0.0.1"
}
