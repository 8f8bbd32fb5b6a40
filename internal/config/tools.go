package config

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// GetToolWorkspaceDir returns the directory tools operate in
func GetToolWorkspaceDir() string {
	return GetEnvOrDefault("TOOL_WORKSPACE_DIR", ".")
}

// GetCommandTimeout returns the bound on a single command execution
func GetCommandTimeout() time.Duration {
	raw := GetEnvOrDefault("TOOL_COMMAND_TIMEOUT_SECONDS", "60")
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Invalid TOOL_COMMAND_TIMEOUT_SECONDS, using default")
		return 60 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
