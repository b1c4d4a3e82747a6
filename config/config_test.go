package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "payments")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "payments")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("DUITKU_MERCHANT_CODE", "D0001")
	t.Setenv("DUITKU_API_KEY", "dk-key")
	t.Setenv("FLIP_SECRET_KEY", "flip-secret")
	t.Setenv("PAYMENT_CALLBACK_URL", "https://api.example.com/payments/callback")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8087", cfg.Port)
	assert.Equal(t, "sandbox", cfg.DuitkuEnv)
	assert.Equal(t, "kafka", cfg.EventBackend)
	assert.Equal(t, "http://localhost:3000", cfg.AppURL)
}

func TestLoadConfig_AppURLIsBareOrigin(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_URL", "https://app.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// adapters append /payment/status/<orderID> to this value, so any path
	// here would double up in the provider return URL
	assert.Equal(t, "https://app.example.com", cfg.AppURL)
	assert.NotContains(t, cfg.AppURL, "/payment")
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DUITKU_API_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t,
		"host=localhost user=payments password=secret dbname=payments port=5432 sslmode=disable TimeZone=Asia/Jakarta",
		cfg.DSN())
}

func TestConfig_GatewayBaseURLs(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.duitku.com", cfg.DuitkuBaseURL())
	assert.Equal(t, "https://bigflip.id/big_sandbox_api/v3", cfg.FlipBaseURL())

	cfg.DuitkuEnv = "production"
	cfg.FlipEnv = "production"
	assert.Equal(t, "https://passport.duitku.com", cfg.DuitkuBaseURL())
	assert.Equal(t, "https://bigflip.id/api/v3", cfg.FlipBaseURL())
}
