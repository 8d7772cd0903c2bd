package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fragkeeper/internal/flagx"
	"github.com/dmitrijs2005/fragkeeper/internal/timex"
)

// JsonConfig is the DTO read from the JSON configuration file. Duration
// fields accept both "1m" style strings and integer nanoseconds. Absent
// fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc"`
	MetricsAddr                 string          `json:"metrics_addr"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	MasterPassphrase            string          `json:"master_passphrase"`
	MasterSalt                  string          `json:"master_salt"`
	KeyMode                     string          `json:"key_mode"`
	Scheme                      string          `json:"scheme"`
	FragmentSize                int             `json:"fragment_size"`
	MaxTokenAge                 *timex.Duration `json:"max_token_age"`
	IOConcurrency               int             `json:"io_concurrency"`
	MaxMessageSize              int             `json:"max_message_size"`
	MetadataBackend             string          `json:"metadata_backend"`
	FragmentBackend             string          `json:"fragment_backend"`
	DatabaseDSN                 string          `json:"database_dsn"`
	RedisURL                    string          `json:"redis_url"`
	BadgerPath                  string          `json:"badger_path"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	LogLevel                    string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config into config. Nothing is
// loaded when neither flag is given. Read and decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.MasterPassphrase, c.MasterPassphrase)
	setString(&config.MasterSalt, c.MasterSalt)
	setString(&config.KeyMode, c.KeyMode)
	setString(&config.Scheme, c.Scheme)
	setInt(&config.FragmentSize, c.FragmentSize)
	if c.MaxTokenAge != nil {
		config.MaxTokenAge = c.MaxTokenAge.Duration
	}
	setInt(&config.IOConcurrency, c.IOConcurrency)
	setInt(&config.MaxMessageSize, c.MaxMessageSize)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.FragmentBackend, c.FragmentBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.BadgerPath, c.BadgerPath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
