// Package config loads runtime configuration for the pudo CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. PUDO_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the identity gRPC endpoint
//	-r string   address:port of the account directory
//	-d string   app-data directory
//	-s string   secure store database path
//	-p int      email verification poll interval (seconds)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "directory_addr": "127.0.0.1:6379",
//	  "data_dir": "/home/me/.config/pudo",
//	  "secure_store_path": "/home/me/.pudo/vault.db",
//	  "poll_interval": "2s",
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	PUDO_SERVER_ENDPOINT_ADDR, PUDO_DIRECTORY_ADDR, PUDO_DATA_DIR,
//	PUDO_SECURE_STORE_PATH, PUDO_POLL_INTERVAL, PUDO_REQUEST_TIMEOUT,
//	PUDO_LOG_LEVEL
package config
