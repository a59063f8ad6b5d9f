package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Feed.PollInterval != defaultPollInterval {
		t.Fatalf("expected default poll interval %s, got %s", defaultPollInterval, cfg.Feed.PollInterval)
	}
	if cfg.Feed.BaseURL != defaultFeedBaseURL || cfg.Feed.UpstreamBaseURL != defaultUpstreamBaseURL {
		t.Fatalf("unexpected default urls %+v", cfg.Feed)
	}
	if cfg.Feed.Mode != "live" || cfg.Feed.StreamTransport != "sse" || cfg.Feed.PollOnce {
		t.Fatalf("unexpected default feed mode %+v", cfg.Feed)
	}
	if cfg.Feed.Date != "" || cfg.Feed.Sport != "cfb" {
		t.Fatalf("expected idle cfb default key, got %q/%q", cfg.Feed.Sport, cfg.Feed.Date)
	}
	if cfg.Feed.CFB.Groups != "80,81" || cfg.Feed.CFB.Limit != 3000 {
		t.Fatalf("unexpected cfb defaults %+v", cfg.Feed.CFB)
	}
	if cfg.Feed.CBB.Groups != "50" || cfg.Feed.CBB.Limit != 357 {
		t.Fatalf("unexpected cbb defaults %+v", cfg.Feed.CBB)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSOrigins)
	}
	if cfg.TeamsCSV != "" {
		t.Fatalf("expected empty teams path by default")
	}
	if cfg.Metrics.ServiceName != defaultServiceName {
		t.Fatalf("expected default service name, got %s", cfg.Metrics.ServiceName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "5000")
	t.Setenv(envPollInterval, "45s")
	t.Setenv(envPollOnce, "true")
	t.Setenv(envFeedBaseURL, "https://scores.example.com")
	t.Setenv(envFeedMode, "direct")
	t.Setenv(envStreamTransport, "websocket")
	t.Setenv(envFeedDate, "2025-11-23")
	t.Setenv(envFeedSport, "cbb")
	t.Setenv(envCBBGroups, "50,51")
	t.Setenv(envCBBLimit, "100")
	t.Setenv(envCORSOrigins, "https://a.example.com, https://b.example.com,")
	t.Setenv(envTeamsCSV, "/data/teams.csv")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.Feed.PollInterval != 45*time.Second || !cfg.Feed.PollOnce {
		t.Fatalf("unexpected poll settings %+v", cfg.Feed)
	}
	if cfg.Feed.BaseURL != "https://scores.example.com" || cfg.Feed.Mode != "direct" || cfg.Feed.StreamTransport != "websocket" {
		t.Fatalf("unexpected feed overrides %+v", cfg.Feed)
	}
	if cfg.Feed.Date != "2025-11-23" || cfg.Feed.Sport != "cbb" {
		t.Fatalf("unexpected initial key %q/%q", cfg.Feed.Sport, cfg.Feed.Date)
	}
	if cfg.Feed.CBB.Groups != "50,51" || cfg.Feed.CBB.Limit != 100 {
		t.Fatalf("unexpected cbb overrides %+v", cfg.Feed.CBB)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.TeamsCSV != "/data/teams.csv" {
		t.Fatalf("expected teams path override, got %s", cfg.TeamsCSV)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv(envPollInterval, "not-a-duration")

	cfg := Load()

	if cfg.Feed.PollInterval != defaultPollInterval {
		t.Fatalf("expected default poll interval on invalid value, got %s", cfg.Feed.PollInterval)
	}
}

func TestLoadNonPositiveDurationFallsBack(t *testing.T) {
	t.Setenv(envPollInterval, "0s")

	cfg := Load()

	if cfg.Feed.PollInterval != defaultPollInterval {
		t.Fatalf("expected default poll interval on non-positive value, got %s", cfg.Feed.PollInterval)
	}
}

func TestLoadInvalidLimitFallsBack(t *testing.T) {
	t.Setenv(envCFBLimit, "-5")

	cfg := Load()

	if cfg.Feed.CFB.Limit != defaultCFBLimit {
		t.Fatalf("expected default cfb limit on invalid value, got %d", cfg.Feed.CFB.Limit)
	}
}

func TestMetricsTelemetryConversion(t *testing.T) {
	t.Setenv(envMetricsOn, "false")
	t.Setenv(envMetricsPort, "9300")
	t.Setenv(envOtelEndpoint, "collector:4318")
	t.Setenv(envOtelInsecure, "no")

	tc := Load().Metrics.Telemetry()
	if tc.Enabled || tc.Port != "9300" || tc.OtlpEndpoint != "collector:4318" || tc.OtlpInsecure {
		t.Fatalf("unexpected telemetry config %+v", tc)
	}
	if tc.ServiceName != defaultServiceName {
		t.Fatalf("expected default service name, got %s", tc.ServiceName)
	}
}
