package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authtokens/internal/flagx"
	"github.com/dmitrijs2005/authtokens/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer and
// empty-string fields distinguish "absent" from a zero value, so a file only
// needs to name the settings it changes.
type JsonConfig struct {
	HTTPAddr        string          `json:"http_addr"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	LogLevel        string          `json:"log_level"`

	StorageBackend string `json:"storage_backend"`
	DatabaseDSN    string `json:"database_dsn"`
	RunMigrations  *bool  `json:"run_migrations"`

	RevocationBackend string `json:"revocation_backend"`
	RedisAddr         string `json:"redis_addr"`
	RedisPassword     string `json:"redis_password"`
	RedisDB           *int   `json:"redis_db"`
	RedisKeyPrefix    string `json:"redis_key_prefix"`

	SecretKey        string `json:"secret_key"`
	SigningAlgorithm string `json:"signing_algorithm"`
	Issuer           string `json:"issuer"`

	AccessTokenValidity      *int   `json:"access_token_validity"`
	AccessTokenValidityUnit  string `json:"access_token_validity_unit"`
	RefreshTokenValidity     *int   `json:"refresh_token_validity"`
	RefreshTokenValidityUnit string `json:"refresh_token_validity_unit"`
	RefreshTokenByteLength   *int   `json:"refresh_token_byte_length"`

	HashScheme     string `json:"hash_scheme"`
	BcryptCost     *int   `json:"bcrypt_cost"`
	LookupStrategy string `json:"lookup_strategy"`
	FingerprintKey string `json:"fingerprint_key"`
	LookupPageSize *int   `json:"lookup_page_size"`
}

// parseJSON loads the file named by -c/-config in args, if any, and copies
// every field it sets into cfg.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	if c.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&cfg.LogLevel, c.LogLevel)

	setString(&cfg.StorageBackend, c.StorageBackend)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	if c.RunMigrations != nil {
		cfg.RunMigrations = *c.RunMigrations
	}

	setString(&cfg.RevocationBackend, c.RevocationBackend)
	setString(&cfg.RedisAddr, c.RedisAddr)
	setString(&cfg.RedisPassword, c.RedisPassword)
	setInt(&cfg.RedisDB, c.RedisDB)
	setString(&cfg.RedisKeyPrefix, c.RedisKeyPrefix)

	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.SigningAlgorithm, c.SigningAlgorithm)
	setString(&cfg.Issuer, c.Issuer)

	setInt(&cfg.AccessTokenValidity, c.AccessTokenValidity)
	setString(&cfg.AccessTokenValidityUnit, c.AccessTokenValidityUnit)
	setInt(&cfg.RefreshTokenValidity, c.RefreshTokenValidity)
	setString(&cfg.RefreshTokenValidityUnit, c.RefreshTokenValidityUnit)
	setInt(&cfg.RefreshTokenByteLength, c.RefreshTokenByteLength)

	setString(&cfg.HashScheme, c.HashScheme)
	setInt(&cfg.BcryptCost, c.BcryptCost)
	setString(&cfg.LookupStrategy, c.LookupStrategy)
	setString(&cfg.FingerprintKey, c.FingerprintKey)
	setInt(&cfg.LookupPageSize, c.LookupPageSize)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
