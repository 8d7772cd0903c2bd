package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const envPrefix = "FRAGKEEPER_"

// parseEnv overlays config with FRAGKEEPER_* variables. DATABASE_DSN and
// REDIS_URL are honoured without the prefix as well; the prefixed form wins.
// Malformed numbers and durations panic, like the other loaders.
func parseEnv(config *Config) {
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("REDIS_URL", &config.RedisURL)

	envString(envPrefix+"GRPC_ADDR", &config.EndpointAddrGRPC)
	envString(envPrefix+"METRICS_ADDR", &config.MetricsAddr)
	envString(envPrefix+"SECRET_KEY", &config.SecretKey)
	envDuration(envPrefix+"ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	envString(envPrefix+"MASTER_PASSPHRASE", &config.MasterPassphrase)
	envString(envPrefix+"MASTER_SALT", &config.MasterSalt)
	envString(envPrefix+"KEY_MODE", &config.KeyMode)
	envString(envPrefix+"SCHEME", &config.Scheme)
	envInt(envPrefix+"FRAGMENT_SIZE", &config.FragmentSize)
	envDuration(envPrefix+"MAX_TOKEN_AGE", &config.MaxTokenAge)
	envInt(envPrefix+"IO_CONCURRENCY", &config.IOConcurrency)
	envInt(envPrefix+"MAX_MESSAGE_SIZE", &config.MaxMessageSize)
	envString(envPrefix+"METADATA_BACKEND", &config.MetadataBackend)
	envString(envPrefix+"FRAGMENT_BACKEND", &config.FragmentBackend)
	envString(envPrefix+"DATABASE_DSN", &config.DatabaseDSN)
	envString(envPrefix+"REDIS_URL", &config.RedisURL)
	envString(envPrefix+"BADGER_PATH", &config.BadgerPath)
	envString(envPrefix+"S3_USER", &config.S3RootUser)
	envString(envPrefix+"S3_PASSWORD", &config.S3RootPassword)
	envString(envPrefix+"S3_BUCKET", &config.S3Bucket)
	envString(envPrefix+"S3_REGION", &config.S3Region)
	envString(envPrefix+"S3_ENDPOINT", &config.S3BaseEndpoint)
	envString(envPrefix+"LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}
