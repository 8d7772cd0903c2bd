// Package config loads runtime configuration for the FragKeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: FRAGKEEPER_SERVER_ADDR, FRAGKEEPER_ACCESS_TOKEN,
//     FRAGKEEPER_TIMEOUT.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string          address:port of the backend gRPC endpoint
//	-k string          access token
//	-timeout duration  per-call timeout
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "timeout": "30s"
//	}
package config
