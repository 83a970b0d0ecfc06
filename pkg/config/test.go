package config

func loadTestConfig(cfg *Config) {
	cfg.Destination = Destination{
		Host:     "127.0.0.1",
		Database: "warraq_test",
		User:     "root",
	}
	cfg.DestinationConfigPath = "./tmp/warraq.test.yaml"
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
}
