package config

// SportConfig carries the provider filters for one sport.
type SportConfig struct {
	Groups string
	Limit  int
}

// FeedConfig controls the live feed session: where it connects and how it
// falls back.
type FeedConfig struct {
	BaseURL         string
	UpstreamBaseURL string
	Mode            string
	StreamTransport string
	PollInterval    Duration
	// PollOnce makes the fallback a single pull instead of a timed loop.
	PollOnce bool
	// Date and Sport form the initial session key. An empty Date starts idle.
	Date  string
	Sport string
	CFB   SportConfig
	CBB   SportConfig
}

func loadFeed() FeedConfig {
	return FeedConfig{
		BaseURL:         envOrDefault(envFeedBaseURL, defaultFeedBaseURL),
		UpstreamBaseURL: envOrDefault(envUpstreamBaseURL, defaultUpstreamBaseURL),
		Mode:            envOrDefault(envFeedMode, defaultFeedMode),
		StreamTransport: envOrDefault(envStreamTransport, defaultStreamTransport),
		PollInterval:    durationEnvOrDefault(envPollInterval, defaultPollInterval),
		PollOnce:        boolEnvOrDefault(envPollOnce, false),
		Date:            envOrDefault(envFeedDate, ""),
		Sport:           envOrDefault(envFeedSport, defaultFeedSport),
		CFB: SportConfig{
			Groups: envOrDefault(envCFBGroups, defaultCFBGroups),
			Limit:  intEnvOrDefault(envCFBLimit, defaultCFBLimit),
		},
		CBB: SportConfig{
			Groups: envOrDefault(envCBBGroups, defaultCBBGroups),
			Limit:  intEnvOrDefault(envCBBLimit, defaultCBBLimit),
		},
	}
}
