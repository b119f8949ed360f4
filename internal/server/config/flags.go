package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/authtokens/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-s", "-t", "-tu", "-r", "-ru", "-alg", "-iss",
	"-storage", "-revocation", "-redis", "-lookup", "-l",
}

// parseFlags overlays settings given on the command line.
//
// Supported flags:
//
//	-a string           HTTP bind address (e.g. ":8080")
//	-d string           PostgreSQL DSN
//	-s string           signing secret
//	-t int              access token validity amount
//	-tu string          access token validity unit (default "minutes")
//	-r int              refresh token validity amount
//	-ru string          refresh token validity unit (default "days")
//	-alg string         signing algorithm: HS256, HS384 or HS512
//	-iss string         token issuer
//	-storage string     credential storage: postgres or memory
//	-revocation string  revocation ledger: postgres, redis or memory
//	-redis string       Redis address
//	-lookup string      refresh token lookup: fingerprint or scan
//	-l string           log level
//
// args is filtered first with flagx.FilterArgs so that flags owned by other
// components (-c/-config) do not fail parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "signing secret")
	fs.IntVar(&cfg.AccessTokenValidity, "t", cfg.AccessTokenValidity, "access token validity amount")
	fs.StringVar(&cfg.AccessTokenValidityUnit, "tu", cfg.AccessTokenValidityUnit, "access token validity unit")
	fs.IntVar(&cfg.RefreshTokenValidity, "r", cfg.RefreshTokenValidity, "refresh token validity amount")
	fs.StringVar(&cfg.RefreshTokenValidityUnit, "ru", cfg.RefreshTokenValidityUnit, "refresh token validity unit")
	fs.StringVar(&cfg.SigningAlgorithm, "alg", cfg.SigningAlgorithm, "signing algorithm")
	fs.StringVar(&cfg.Issuer, "iss", cfg.Issuer, "token issuer")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "credential storage backend")
	fs.StringVar(&cfg.RevocationBackend, "revocation", cfg.RevocationBackend, "revocation ledger backend")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LookupStrategy, "lookup", cfg.LookupStrategy, "refresh token lookup strategy")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
