package config

import "time"

const (
	envPort         = "PORT"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
	envCORSOrigins  = "CORS_ALLOWED_ORIGINS"
	envTeamsCSV     = "TEAMS_CSV"

	envFeedBaseURL     = "FEED_BASE_URL"
	envUpstreamBaseURL = "UPSTREAM_BASE_URL"
	envFeedMode        = "FEED_MODE"
	envStreamTransport = "STREAM_TRANSPORT"
	envPollInterval    = "POLL_INTERVAL"
	envPollOnce        = "FALLBACK_POLL_ONCE"
	envFeedDate        = "FEED_DATE"
	envFeedSport       = "FEED_SPORT"
	envCFBGroups       = "CFB_GROUPS"
	envCFBLimit        = "CFB_LIMIT"
	envCBBGroups       = "CBB_GROUPS"
	envCBBLimit        = "CBB_LIMIT"

	defaultPort            = "4000"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultMetricsPort     = "9090"
	defaultServiceName     = "scoreboard-feed-service"
	defaultCORSOrigins     = "*"
	defaultFeedBaseURL     = "http://localhost:3000"
	defaultUpstreamBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	defaultFeedMode        = "live"
	defaultStreamTransport = "sse"
	defaultFeedSport       = "cfb"
	defaultPollInterval    = 20 * time.Second
	defaultCFBGroups       = "80,81"
	defaultCFBLimit        = 3000
	defaultCBBGroups       = "50"
	defaultCBBLimit        = 357
)
