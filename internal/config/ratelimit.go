package config

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true"

	configs := map[string]RateLimitConfig{
		"session_create": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_SESSION_CREATE", 60), // 60 requests per minute
			Window:  time.Minute,
		},
		"chat": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT", 120), // 120 requests per minute
			Window:  time.Minute,
		},
		"tool_invoke": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_TOOL_INVOKE", 60), // 60 requests per minute
			Window:  time.Minute,
		},
		"chat_completion": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_COMPLETION", 120), // 120 requests per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found for key")
	return RateLimitConfig{Enabled: false}
}

func parseEnvInt(key string, defaultValue int) int {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("Invalid value, using default")
		return defaultValue
	}

	return parsed
}
