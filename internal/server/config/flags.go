package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e",
	"-salt", "-key-mode", "-scheme", "-fragment-size", "-max-token-age",
	"-io-concurrency", "-max-msg-size", "-metadata-backend", "-fragment-backend",
	"-redis-url", "-badger-path", "-log-level",
}

// parseFlags populates Config fields from command-line flags.
//
// Short forms kept for the common settings:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address (e.g., ":9090")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u, -p, -b, -g, -e   S3 user, password, bucket, region, endpoint
//
// The master passphrase has no flag so it never shows up in process lists.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve /metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.MasterSalt, "salt", config.MasterSalt, "master key salt")
	fs.StringVar(&config.KeyMode, "key-mode", config.KeyMode, "key mode: shared or per-object")
	fs.StringVar(&config.Scheme, "scheme", config.Scheme, "cipher scheme: aes-gcm or xchacha20-poly1305")
	fs.IntVar(&config.FragmentSize, "fragment-size", config.FragmentSize, "fragment size in bytes")
	fs.DurationVar(&config.MaxTokenAge, "max-token-age", config.MaxTokenAge, "reject tokens older than this (0 disables)")
	fs.IntVar(&config.IOConcurrency, "io-concurrency", config.IOConcurrency, "concurrent fragment reads/writes per request")
	fs.IntVar(&config.MaxMessageSize, "max-msg-size", config.MaxMessageSize, "max gRPC message size in bytes")
	fs.StringVar(&config.MetadataBackend, "metadata-backend", config.MetadataBackend, "metadata backend: postgres, redis, badger, memory")
	fs.StringVar(&config.FragmentBackend, "fragment-backend", config.FragmentBackend, "fragment backend: s3, redis, badger, memory")
	fs.StringVar(&config.RedisURL, "redis-url", config.RedisURL, "redis URL")
	fs.StringVar(&config.BadgerPath, "badger-path", config.BadgerPath, "badger directory (empty for in-memory)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
