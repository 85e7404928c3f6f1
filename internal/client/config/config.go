package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/pudo/internal/common"
)

// Config holds runtime settings for the pudo CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the identity gRPC endpoint.
//   - DirectoryAddr: host:port of the account directory (Redis).
//   - DataDir: app-data directory; holds the first-run marker.
//   - SecureStorePath: encrypted secure-store database. Kept outside DataDir
//     so that it can outlive a reinstall, as platform key stores do.
//   - PollInterval: email-verification poll period.
//   - RequestTimeout: bound for backend calls made without a deadline.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ENDPOINT_ADDR"`
	DirectoryAddr      string        `env:"DIRECTORY_ADDR"`
	DataDir            string        `env:"DATA_DIR"`
	SecureStorePath    string        `env:"SECURE_STORE_PATH"`
	PollInterval       time.Duration `env:"POLL_INTERVAL"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel           string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DirectoryAddr = "127.0.0.1:6379"
	c.DataDir = defaultDataDir()
	c.SecureStorePath = defaultSecureStorePath()
	c.PollInterval = 2 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+common.AppName, "data")
	}
	return filepath.Join(dir, common.AppName)
}

func defaultSecureStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("."+common.AppName, "vault.db")
	}
	return filepath.Join(home, "."+common.AppName, "vault.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
