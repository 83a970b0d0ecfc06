package config

func loadProductionConfig(cfg *Config) {
	cfg.DestinationConfigPath = destinationConfigFilePath()
	cfg.ServerHost = "0.0.0.0"
}
