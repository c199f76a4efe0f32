package config

import (
	"testing"
	"time"

	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/alvinbaena/pwd-analyzer/pkg/strength"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, uint16(3100), cfg.Port)
	assert.Equal(t, hibp.DefaultBaseURL, cfg.RangeAPIURL)
	assert.Equal(t, hibp.DefaultTimeout, cfg.LookupTimeout)
	assert.Equal(t, 0, cfg.RetryMax)
	assert.True(t, cfg.AddPadding)
	assert.Equal(t, strength.DefaultGuessRate, cfg.GuessRate)
	assert.Equal(t, 256, cfg.MaxPasswordLength)
	assert.Equal(t, strength.DefaultOptions(), cfg.StrengthOptions())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "8443")
	t.Setenv("LOOKUP_TIMEOUT", "2s")
	t.Setenv("GUESS_RATE", "1e4")
	t.Setenv("RETRY_MAX", "2")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADD_PADDING", "false")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, uint16(8443), cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 1e4, cfg.GuessRate)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)

	opts := cfg.HTTPOptions()
	assert.Equal(t, 2, opts.RetryMax)
	assert.False(t, opts.Padding)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TLS_CERT", "cert.pem")
	t.Setenv("GUESS_RATE", "0")

	_, err := Load(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLS_KEY: This field requires the presence of TLS_CERT")
	assert.Contains(t, err.Error(), "GUESS_RATE")
}

func TestLoad_ReportsEnvKeys(t *testing.T) {
	t.Setenv("RANGE_API_URL", "not a url")
	t.Setenv("MAX_PASSWORD_LENGTH", "4")

	_, err := Load(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANGE_API_URL: This field must be a valid URL")
	assert.Contains(t, err.Error(), "MAX_PASSWORD_LENGTH: This field must be greater than or equal to MIN_LENGTH")
	assert.NotContains(t, err.Error(), "RANGE_APIURL")
}
