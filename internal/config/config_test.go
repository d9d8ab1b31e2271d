package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8000", cfg.RunAddr)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 3600, cfg.JWTExpirationSeconds)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "avatars", cfg.S3Bucket)
}

func TestAccessTokenTTL(t *testing.T) {
	cfg := &Config{JWTExpirationSeconds: 90}
	assert.Equal(t, 90*time.Second, cfg.AccessTokenTTL())
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9090")
	t.Setenv("DB_URL", "postgres://env:env@db:5432/app")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRATION_SECONDS", "120")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, ":9090", cfg.RunAddr)
	assert.Equal(t, "postgres://env:env@db:5432/app", cfg.DatabaseDSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 120, cfg.JWTExpirationSeconds)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestParseEnv_UnsetKeepsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "secretKey", cfg.JWTSecret)
	assert.Equal(t, 3600, cfg.JWTExpirationSeconds)
	assert.Equal(t, "http://localhost:8000/", cfg.BaseURL)
}

func TestParseEnv_InvalidInt(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_SECONDS", "not-a-number")

	cfg := &Config{}
	cfg.LoadDefaults()
	assert.Error(t, parseEnv(cfg))
}
