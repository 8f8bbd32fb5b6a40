package config

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// GetAnthropicAPIKey returns the Anthropic API key, or "" when not configured
func GetAnthropicAPIKey() string {
	value := GetEnvOrDefault("ANTHROPIC_API_KEY", "")
	if value == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - Claude provider will be unavailable")
	}
	return value
}

// GetAnthropicModel returns the Claude model identifier to use
func GetAnthropicModel() string {
	return GetEnvOrDefault("ANTHROPIC_MODEL", "claude-3-7-sonnet-latest")
}

// GetAnthropicMaxTokens returns the max output token budget per turn
func GetAnthropicMaxTokens() int {
	raw := GetEnvOrDefault("ANTHROPIC_MAX_TOKENS", "4000")
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Invalid ANTHROPIC_MAX_TOKENS, using default")
		return 4000
	}
	return value
}

// GetAnthropicTemperature returns the sampling temperature
func GetAnthropicTemperature() float64 {
	raw := GetEnvOrDefault("ANTHROPIC_TEMPERATURE", "0.7")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Invalid ANTHROPIC_TEMPERATURE, using default")
		return 0.7
	}
	return value
}
