package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileEnvVar names an optional TOML file whose values sit between
// environment variables and the built-in defaults.
const ConfigFileEnvVar = "EOSTRE_CONFIG"

type Config interface {
	EnvConfig
	SessionConfig
	StoreConfig
	HTTPConfig
	CorsConfig
	StubConfig
}

type EnvConfig interface {
	GetEnv() string
	GetAppName() string
	GetPort() string
	GetDataFolder() string
	GetLogLevel() string
	GetAPIBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Session
	Store
	HTTP
	Cors
	Stub
}

// New returns a Config backed by environment variables only.
func New() Config {
	return newMainConfig(&source{})
}

// Load returns a Config backed by environment variables with the TOML file at
// path as a fallback. An empty path behaves like New.
func Load(path string) (Config, error) {
	src := &source{}
	if path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}
	return newMainConfig(src), nil
}

// LoadFromEnv loads the file named by EOSTRE_CONFIG, if any.
func LoadFromEnv() (Config, error) {
	return Load(os.Getenv(ConfigFileEnvVar))
}

func newMainConfig(src *source) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{src: src},
		Session: Session{src: src},
		Store:   Store{src: src},
		HTTP:    HTTP{src: src},
		Cors:    Cors{src: src},
		Stub:    Stub{src: src},
	}
}

// source resolves a setting as env var > config file > default.
type source struct {
	file map[string]string
}

func (s *source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if s != nil && s.file != nil {
		if value, ok := s.file[fileKey(envVar)]; ok && value != "" {
			return value
		}
	}
	return defaultValue
}

// fileKey maps EOSTRE_API_BASE_URL to api_base_url.
func fileKey(envVar string) string {
	return strings.ToLower(strings.TrimPrefix(envVar, "EOSTRE_"))
}

func readFile(path string) (map[string]string, error) {
	raw := make(map[string]any)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return values, nil
}
