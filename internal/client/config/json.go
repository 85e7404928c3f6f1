package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pudo/internal/flagx"
	"github.com/dmitrijs2005/pudo/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "2s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DirectoryAddr      string         `json:"directory_addr"`
	DataDir            string         `json:"data_dir"`
	SecureStorePath    string         `json:"secure_store_path"`
	PollInterval       timex.Duration `json:"poll_interval"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields missing from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DirectoryAddr, jc.DirectoryAddr)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.SecureStorePath, jc.SecureStorePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
