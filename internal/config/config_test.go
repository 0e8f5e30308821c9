package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/payment-relay/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"MERCHANT_ID":        "MERCHANT1",
		"SALT_KEY":           "test-salt",
		"SALT_INDEX":         "2",
		"CALLBACK_BASE_URL":  "https://relay.example/",
		"GATEWAY_BASE_URL":   "",
		"GATEWAY_TIMEOUT_MS": "",
		"AMOUNT_CEILING":     "",
		"PORT":               "",
		"APP_ENV":            "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "MERCHANT1", cfg.MerchantID)
	require.Equal(t, "test-salt", cfg.SaltKey)
	require.Equal(t, 2, cfg.SaltIndex)
	require.Equal(t, "https://relay.example", cfg.CallbackBaseURL, "trailing slash is trimmed")
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	require.Equal(t, float64(100000), cfg.AmountCeiling)
	require.Equal(t, 60, cfg.RateLimitRPM)
	require.False(t, cfg.GatewayProduction)
}

func TestLoadMissingMerchantID(t *testing.T) {
	env := baseEnv()
	env["MERCHANT_ID"] = ""
	_, err := config.LoadForTests(env)
	require.ErrorContains(t, err, "MERCHANT_ID")
}

func TestLoadMissingSaltKey(t *testing.T) {
	env := baseEnv()
	env["SALT_KEY"] = ""
	_, err := config.LoadForTests(env)
	require.ErrorContains(t, err, "SALT_KEY")
}

func TestLoadMissingCallbackBaseURL(t *testing.T) {
	env := baseEnv()
	env["CALLBACK_BASE_URL"] = ""
	_, err := config.LoadForTests(env)
	require.ErrorContains(t, err, "CALLBACK_BASE_URL")
}

func TestLoadInvalidSaltIndex(t *testing.T) {
	env := baseEnv()
	env["SALT_INDEX"] = "0"
	_, err := config.LoadForTests(env)
	require.ErrorContains(t, err, "SALT_INDEX")
}

func TestMustLoad(t *testing.T) {
	for key, val := range baseEnv() {
		t.Setenv(key, val)
	}

	cfg := config.MustLoad()
	require.Equal(t, "MERCHANT1", cfg.MerchantID)

	t.Setenv("MERCHANT_ID", "")
	require.Panics(t, func() { config.MustLoad() })
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9000"
	env["GATEWAY_TIMEOUT_MS"] = "2500"
	env["AMOUNT_CEILING"] = "50000"
	env["GATEWAY_PRODUCTION"] = "true"
	env["CORS_ALLOWED_ORIGINS"] = "https://shop.example, https://admin.example"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr())
	require.Equal(t, 2500*time.Millisecond, cfg.GatewayTimeout)
	require.Equal(t, float64(50000), cfg.AmountCeiling)
	require.True(t, cfg.GatewayProduction)
	require.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
}
