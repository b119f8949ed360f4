package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix prefixes every environment variable, e.g. AUTH_SECRET_KEY.
const EnvPrefix = "AUTH"

// parseEnv overlays variables that are set; unset ones leave the field as is.
func parseEnv(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}
