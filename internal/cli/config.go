package cli

import (
	"os"
	"strings"
)

// Config is the environment-driven configuration for koastctl.
type Config struct {
	BaseURL   string // Required: root URL of the API server
	APIPrefix string // Endpoint registry prefix (default: /api/)
	Strategy  string // Auth strategy: federated or local (default: local)
	SiteTitle string // Display text for the identity provider hand-off
	ReturnURL string // Where the identity provider sends the user back

	SessionFile string // Path to the SQLite session store (default: ./koast-session.db)
	SessionName string // Snapshot name within the store (default: default)
	SessionKey  string // Passphrase sealing persisted session metadata

	Endpoints map[string]string // handle -> template, from KOAST_ENDPOINTS

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		BaseURL:     os.Getenv("KOAST_BASE_URL"),
		APIPrefix:   getEnvOrDefault("KOAST_API_PREFIX", "/api/"),
		Strategy:    getEnvOrDefault("KOAST_STRATEGY", "local"),
		SiteTitle:   os.Getenv("KOAST_SITE_TITLE"),
		ReturnURL:   os.Getenv("KOAST_RETURN_URL"),
		SessionFile: getEnvOrDefault("KOAST_SESSION_FILE", "koast-session.db"),
		SessionName: getEnvOrDefault("KOAST_SESSION_NAME", "default"),
		SessionKey:  getEnvOrDefault("KOAST_SESSION_KEY", "koast"),
		Endpoints:   parseEndpoints(os.Getenv("KOAST_ENDPOINTS")),
		Env:         getEnvOrDefault("ENV", "dev"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// parseEndpoints reads "handle=template" pairs separated by commas, e.g.
// KOAST_ENDPOINTS="tasks=/:id,users=/:id".
func parseEndpoints(raw string) map[string]string {
	endpoints := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		handle, template, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		endpoints[strings.TrimSpace(handle)] = strings.TrimSpace(template)
	}
	return endpoints
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
