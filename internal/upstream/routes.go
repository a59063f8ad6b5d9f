// Package upstream builds the URLs of the live feed's external endpoints.
package upstream

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
)

const (
	DefaultFeedBaseURL     = "http://localhost:3000"
	DefaultUpstreamBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
)

// Mode picks the pull routes for a session.
type Mode string

const (
	// ModeLive streams first and pulls from the app's scoreboard proxy on fallback.
	ModeLive Mode = "live"
	// ModeDirect polls the provider directly, with the app's provider proxy as secondary.
	ModeDirect Mode = "direct"
)

// ParseMode defaults to ModeLive for anything unrecognised.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeDirect)) {
		return ModeDirect
	}
	return ModeLive
}

// Route names one pull endpoint.
type Route struct {
	Name string
	URL  string
}

// Route names used in logs and metrics.
const (
	RouteScoreboard = "scoreboard"
	RouteDirect     = "direct"
	RouteProxy      = "espn_proxy"
)

// SportConfig holds the provider parameters for one sport.
type SportConfig struct {
	Path   string
	Groups string
	Limit  int
}

// DefaultSports returns the provider paths and group/limit defaults.
func DefaultSports() map[scoreboard.Sport]SportConfig {
	return map[scoreboard.Sport]SportConfig{
		scoreboard.SportCFB: {Path: "football/college-football", Groups: "80,81", Limit: 3000},
		scoreboard.SportCBB: {Path: "basketball/mens-college-basketball", Groups: "50", Limit: 357},
	}
}

// Config locates the app host and the provider.
type Config struct {
	FeedBaseURL     string
	UpstreamBaseURL string
	Sports          map[scoreboard.Sport]SportConfig
}

// Routes builds endpoint URLs for feed keys.
type Routes struct {
	feedBase     string
	upstreamBase string
	sports       map[scoreboard.Sport]SportConfig
}

// NewRoutes applies defaults for anything left empty.
func NewRoutes(cfg Config) Routes {
	sports := DefaultSports()
	for sport, sc := range cfg.Sports {
		merged := sports[sport]
		if sc.Path != "" {
			merged.Path = sc.Path
		}
		if sc.Groups != "" {
			merged.Groups = sc.Groups
		}
		if sc.Limit > 0 {
			merged.Limit = sc.Limit
		}
		sports[sport] = merged
	}
	return Routes{
		feedBase:     trimBase(cfg.FeedBaseURL, DefaultFeedBaseURL),
		upstreamBase: trimBase(cfg.UpstreamBaseURL, DefaultUpstreamBaseURL),
		sports:       sports,
	}
}

// StreamURL is the push endpoint: /api/live?date=&sport=.
func (r Routes) StreamURL(key scoreboard.Key) string {
	return r.feedBase + "/api/live?" + keyQuery(key).Encode()
}

// ScoreboardURL is the app's pull proxy: /api/scoreboard?date=&sport=.
func (r Routes) ScoreboardURL(key scoreboard.Key) string {
	return r.feedBase + "/api/scoreboard?" + keyQuery(key).Encode()
}

// DirectURL is the provider scoreboard for the key's sport and date.
func (r Routes) DirectURL(key scoreboard.Key) string {
	sc := r.sports[key.Sport]
	return r.upstreamBase + "/" + strings.Trim(sc.Path, "/") + "/scoreboard?" + r.providerQuery(key).Encode()
}

// ProxyURL is the app's pass-through to the provider, used when a direct call fails.
func (r Routes) ProxyURL(key scoreboard.Key) string {
	return r.feedBase + "/api/espn/scoreboard?" + r.providerQuery(key).Encode()
}

// PullRoutes returns the primary and secondary routes for mode.
func (r Routes) PullRoutes(key scoreboard.Key, mode Mode) []Route {
	if mode == ModeDirect {
		return []Route{
			{Name: RouteDirect, URL: r.DirectURL(key)},
			{Name: RouteProxy, URL: r.ProxyURL(key)},
		}
	}
	return []Route{
		{Name: RouteScoreboard, URL: r.ScoreboardURL(key)},
		{Name: RouteProxy, URL: r.ProxyURL(key)},
	}
}

func (r Routes) providerQuery(key scoreboard.Key) url.Values {
	sc := r.sports[key.Sport]
	q := url.Values{}
	q.Set("dates", key.CompactDate())
	if sc.Groups != "" {
		q.Set("groups", sc.Groups)
	}
	if sc.Limit > 0 {
		q.Set("limit", strconv.Itoa(sc.Limit))
	}
	return q
}

func keyQuery(key scoreboard.Key) url.Values {
	q := url.Values{}
	q.Set("date", key.Date)
	q.Set("sport", string(key.Sport))
	return q
}

func trimBase(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return strings.TrimSuffix(raw, "/")
}
