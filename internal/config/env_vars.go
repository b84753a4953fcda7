package config

import (
	"os"
	"strings"
)

const (
	envVar         = "ENV"
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "EOSTRE_DATA_FOLDER"
	logLevelEnvVar = "EOSTRE_LOG_LEVEL"
	baseURLVar     = "EOSTRE_API_BASE_URL"
)

type EnvVars struct {
	src *source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Eostre Admin")
}

// GetPort returns the listen address for the development auth backend.
func (e EnvVars) GetPort() string {
	port := e.src.get(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetDataFolder() string {
	return e.src.get(folderEnvVar, "./data")
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelEnvVar, "info")
}

// GetAPIBaseURL returns the backend origin every auth and resource path is
// resolved against (e.g. "https://admin.example.com").
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.src.get(baseURLVar, "http://localhost:8080"), "/")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
