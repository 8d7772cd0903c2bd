package config

import (
	"fmt"
	"os"
	"time"
)

func parseEnv(cfg *Config) {
	if v := os.Getenv("FRAGKEEPER_SERVER_ADDR"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv("FRAGKEEPER_ACCESS_TOKEN"); v != "" {
		cfg.AccessToken = v
	}
	if v := os.Getenv("FRAGKEEPER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("FRAGKEEPER_TIMEOUT: %w", err))
		}
		cfg.Timeout = d
	}
}
