package config

import (
	"flag"
	"os"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, seconds
//	-r string   Redis address
//
// The remaining settings (mail, S3, base URL) are environment-only; they
// rarely change between invocations of the same deployment.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "secret key")
	fs.IntVar(&cfg.JWTExpirationSeconds, "t", cfg.JWTExpirationSeconds, "access token validity (in seconds)")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")

	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}
}
