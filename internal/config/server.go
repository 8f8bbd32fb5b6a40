package config

// GetListenAddr returns the address the HTTP server binds to
func GetListenAddr() string {
	return GetEnvOrDefault("LISTEN_ADDR", ":8080")
}

// GetLogLevel returns the zerolog level name for the process
func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "info")
}
