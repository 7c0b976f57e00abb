package main

import "os"

// Environment variables read as flag defaults.
const (
	envConfigPath      = "LINKROUTER_CONFIG_PATH"
	envLogLevel        = "LINKROUTER_LOG_LEVEL"
	envLogFormat       = "LINKROUTER_LOG_FORMAT"
	envDomain          = "LINKROUTER_DOMAIN"
	envListen          = "LINKROUTER_LISTEN"
	envShutdownTimeout = "LINKROUTER_SHUTDOWN_TIMEOUT"
)

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
