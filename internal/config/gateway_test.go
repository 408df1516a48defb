package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadGatewayConfigDefaults(t *testing.T) {
	cfg := ReadGatewayConfig(map[string]string{})
	assert.Equal(t, GatewayConfig{
		Enabled:        false,
		BaseURL:        "http://localhost:8000",
		PollIntervalMs: 10000,
		MaxBackoffMs:   60000,
		RetryLimit:     3,
	}, cfg)

	assert.Equal(t, cfg, ReadGatewayConfig(nil))
}

func TestReadGatewayConfigEnabledFlag(t *testing.T) {
	cases := map[string]bool{
		"1": true, "TRUE": true, " yes ": true, "On": true,
		"0": false, "false": false, "no": false, "OFF": false,
		"maybe": false, "": false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, IsGatewayEnabled(map[string]string{"GATEWAY_ENABLED": raw}), "GATEWAY_ENABLED=%q", raw)
	}
}

func TestReadGatewayConfigBaseURLFallbackChain(t *testing.T) {
	cfg := ReadGatewayConfig(map[string]string{"RISK_GATEWAY_URL": "http://risk:9000"})
	assert.Equal(t, "http://risk:9000", cfg.BaseURL)

	cfg = ReadGatewayConfig(map[string]string{
		"GATEWAY_BASE_URL": "http://primary:8000",
		"RISK_GATEWAY_URL": "http://risk:9000",
	})
	assert.Equal(t, "http://primary:8000", cfg.BaseURL)

	cfg = ReadGatewayConfig(map[string]string{"GATEWAY_BASE_URL": "   ", "RISK_GATEWAY_URL": ""})
	assert.Equal(t, DefaultGatewayBaseURL, cfg.BaseURL)
}

func TestReadGatewayConfigIntegers(t *testing.T) {
	cfg := ReadGatewayConfig(map[string]string{
		"GATEWAY_POLL_INTERVAL_MS": "250ms",
		"GATEWAY_MAX_BACKOFF_MS":   "abc",
		"GATEWAY_RETRY_LIMIT":      " 5",
	})
	assert.Equal(t, 250, cfg.PollIntervalMs)
	assert.Equal(t, DefaultMaxBackoffMs, cfg.MaxBackoffMs)
	assert.Equal(t, 5, cfg.RetryLimit)

	assert.Equal(t, -2, parseIntOr("-2", 7))
	assert.Equal(t, 7, parseIntOr("-", 7))
	assert.Equal(t, 12, parseIntOr("12.9", 7))
	assert.Equal(t, 7, parseIntOr("99999999999999999999999", 7))
}

func TestEnvMap(t *testing.T) {
	env := EnvMap([]string{"A=1", "B=x=y", "broken", "=nokey", "A=2"})
	assert.Equal(t, map[string]string{"A": "2", "B": "x=y"}, env)
}
