package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig maps environment variables onto config fields. It is a separate
// DTO so that absent variables leave the already-applied defaults untouched.
type envConfig struct {
	RunAddr              *string `env:"HTTP_ADDRESS"`
	BaseURL              *string `env:"BASE_URL"`
	DatabaseDSN          *string `env:"DB_URL"`
	JWTSecret            *string `env:"JWT_SECRET"`
	JWTAlgorithm         *string `env:"JWT_ALGORITHM"`
	JWTExpirationSeconds *int    `env:"JWT_EXPIRATION_SECONDS"`
	MailServer           *string `env:"MAIL_SERVER"`
	MailPort             *int    `env:"MAIL_PORT"`
	MailUsername         *string `env:"MAIL_USERNAME"`
	MailPassword         *string `env:"MAIL_PASSWORD"`
	MailFrom             *string `env:"MAIL_FROM"`
	MailFromName         *string `env:"MAIL_FROM_NAME"`
	S3RootUser           *string `env:"S3_ROOT_USER"`
	S3RootPassword       *string `env:"S3_ROOT_PASSWORD"`
	S3Bucket             *string `env:"S3_BUCKET"`
	S3Region             *string `env:"S3_REGION"`
	S3BaseEndpoint       *string `env:"S3_BASE_ENDPOINT"`
	RedisAddr            *string `env:"REDIS_ADDR"`
}

// parseEnv overlays values from the environment onto the provided Config.
// Only variables that are actually set override the current values.
func parseEnv(cfg *Config) error {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	apply(&cfg.RunAddr, raw.RunAddr)
	apply(&cfg.BaseURL, raw.BaseURL)
	apply(&cfg.DatabaseDSN, raw.DatabaseDSN)
	apply(&cfg.JWTSecret, raw.JWTSecret)
	apply(&cfg.JWTAlgorithm, raw.JWTAlgorithm)
	applyInt(&cfg.JWTExpirationSeconds, raw.JWTExpirationSeconds)
	apply(&cfg.MailServer, raw.MailServer)
	applyInt(&cfg.MailPort, raw.MailPort)
	apply(&cfg.MailUsername, raw.MailUsername)
	apply(&cfg.MailPassword, raw.MailPassword)
	apply(&cfg.MailFrom, raw.MailFrom)
	apply(&cfg.MailFromName, raw.MailFromName)
	apply(&cfg.S3RootUser, raw.S3RootUser)
	apply(&cfg.S3RootPassword, raw.S3RootPassword)
	apply(&cfg.S3Bucket, raw.S3Bucket)
	apply(&cfg.S3Region, raw.S3Region)
	apply(&cfg.S3BaseEndpoint, raw.S3BaseEndpoint)
	apply(&cfg.RedisAddr, raw.RedisAddr)

	return nil
}
