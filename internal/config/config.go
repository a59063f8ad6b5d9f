package config

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	TeamsCSV    string
	Feed        FeedConfig
	Metrics     MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		LogLevel:    envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:   envOrDefault(envLogFormat, defaultLogFormat),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, defaultCORSOrigins),
		TeamsCSV:    envOrDefault(envTeamsCSV, ""),
		Feed:        loadFeed(),
		Metrics:     loadMetrics(),
	}
}
