package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintpay/checkout-api/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"PROCESSOR_SECRET_KEY":      "sk_test_abc",
		"PROCESSOR_PUBLISHABLE_KEY": "pk_test_abc",
		"WEBHOOK_SIGNING_SECRET":    "whsec_abc",
		"PORT":                      "",
		"APP_ENV":                   "",
		"CART_AMOUNT":               "",
		"CART_CURRENCY":             "",
		"WEBHOOK_ALLOW_UNSIGNED":    "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, ":4242", cfg.HTTPAddr())
	require.Equal(t, int64(1099), cfg.CartAmount)
	require.Equal(t, "AUD", cfg.CartCurrency)
	require.Equal(t, 10*time.Second, cfg.ProcessorTimeout)
	require.Equal(t, "development", cfg.AppEnv)
}

func TestLoadRequiresSecrets(t *testing.T) {
	env := baseEnv()
	env["PROCESSOR_SECRET_KEY"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["PROCESSOR_PUBLISHABLE_KEY"] = ""
	_, err = config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["WEBHOOK_SIGNING_SECRET"] = ""
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}

func TestUnsignedWebhooksOptIn(t *testing.T) {
	env := baseEnv()
	env["WEBHOOK_SIGNING_SECRET"] = ""
	env["WEBHOOK_ALLOW_UNSIGNED"] = "true"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.True(t, cfg.AllowUnsignedHooks)

	env["APP_ENV"] = "production"
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}

func TestMalformedCartAmountFallsBack(t *testing.T) {
	env := baseEnv()
	env["CART_AMOUNT"] = "1099abc"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, int64(1099), cfg.CartAmount, "trailing garbage must not parse as a value")

	env["CART_AMOUNT"] = "2500"
	cfg, err = config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, int64(2500), cfg.CartAmount)
}

func TestCurrencyUppercased(t *testing.T) {
	env := baseEnv()
	env["CART_CURRENCY"] = "aud"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "AUD", cfg.CartCurrency)
}
