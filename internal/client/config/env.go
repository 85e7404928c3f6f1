package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "PUDO_"

// parseEnv overlays Config with PUDO_* environment variables. Unset
// variables leave the field unchanged. Durations use time.ParseDuration
// syntax ("2s"). Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
