package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`
	APIPort     int    `env:"API_PORT,default=8080"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	MLLPListenAddr string `env:"MLLP_LISTEN_ADDR,default=0.0.0.0:7001"`
	MLLPChannelID  string `env:"MLLP_CHANNEL_ID,default=mllp_inbound"`

	IngestRatePerSec int `env:"INGEST_RATE_PER_SEC,default=200"`

	// ErrorSimulationRate makes the MLLP listener record a fraction of
	// received messages as FAILED with a negative ACK, for exercising
	// downstream consumers. 0 disables simulation.
	ErrorSimulationRate float64 `env:"ERROR_SIMULATION_RATE,default=0.0"`

	SeedSampleData bool `env:"SEED_SAMPLE_DATA,default=false"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.ErrorSimulationRate < 0 || cfg.ErrorSimulationRate > 1 {
		return nil, fmt.Errorf("ERROR_SIMULATION_RATE must be within [0, 1], got %v", cfg.ErrorSimulationRate)
	}

	return &cfg, nil
}
