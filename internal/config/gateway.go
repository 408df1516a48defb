package config

import (
	"strings"
)

const (
	DefaultGatewayBaseURL  = "http://localhost:8000"
	DefaultPollIntervalMs  = 10000
	DefaultMaxBackoffMs    = 60000
	DefaultGatewayRetries  = 3
	envGatewayEnabled      = "GATEWAY_ENABLED"
	envGatewayBaseURL      = "GATEWAY_BASE_URL"
	envRiskGatewayURL      = "RISK_GATEWAY_URL"
	envGatewayPollInterval = "GATEWAY_POLL_INTERVAL_MS"
	envGatewayMaxBackoff   = "GATEWAY_MAX_BACKOFF_MS"
	envGatewayRetryLimit   = "GATEWAY_RETRY_LIMIT"
)

// GatewayConfig 是网关客户端的部署配置，构造客户端时解析一次
type GatewayConfig struct {
	Enabled        bool   `mapstructure:"enabled" json:"enabled"`
	BaseURL        string `mapstructure:"base_url" json:"base_url"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" json:"poll_interval_ms"`
	MaxBackoffMs   int    `mapstructure:"max_backoff_ms" json:"max_backoff_ms"`
	RetryLimit     int    `mapstructure:"retry_limit" json:"retry_limit"`
}

// ReadGatewayConfig resolves the gateway settings from an environment map.
// It is pure: missing or malformed values fall back to the documented defaults.
func ReadGatewayConfig(env map[string]string) GatewayConfig {
	return GatewayConfig{
		Enabled:        parseFlag(env[envGatewayEnabled], false),
		BaseURL:        firstNonEmpty(env[envGatewayBaseURL], env[envRiskGatewayURL], DefaultGatewayBaseURL),
		PollIntervalMs: parseIntOr(env[envGatewayPollInterval], DefaultPollIntervalMs),
		MaxBackoffMs:   parseIntOr(env[envGatewayMaxBackoff], DefaultMaxBackoffMs),
		RetryLimit:     parseIntOr(env[envGatewayRetryLimit], DefaultGatewayRetries),
	}
}

func IsGatewayEnabled(env map[string]string) bool {
	return ReadGatewayConfig(env).Enabled
}

// EnvMap converts os.Environ() style KEY=VALUE pairs into a map. Later entries win.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

func parseFlag(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// parseIntOr reads a leading base-10 integer ("250ms" -> 250, " 42" -> 42).
// Input without leading digits, or one that overflows, yields fallback.
func parseIntOr(raw string, fallback int) int {
	s := strings.TrimLeft(raw, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n > (1<<53)/10 {
			return fallback
		}
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return fallback
	}
	if neg {
		return -n
	}
	return n
}
