package scoreboard

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/timeutil"
)

// Sport selects which scoreboard a session follows.
type Sport string

const (
	SportCFB Sport = "cfb"
	SportCBB Sport = "cbb"
)

// ParseSport maps a case-insensitive sport code to a Sport.
func ParseSport(raw string) (Sport, error) {
	switch Sport(strings.ToLower(strings.TrimSpace(raw))) {
	case SportCFB:
		return SportCFB, nil
	case SportCBB:
		return SportCBB, nil
	default:
		return "", fmt.Errorf("unknown sport %q (expected cfb or cbb)", raw)
	}
}

// Key identifies one logical live session. Keys are comparable with ==.
type Key struct {
	Date  string `json:"date"`
	Sport Sport  `json:"sport"`
}

// NewKey validates the inputs and stores the date as YYYY-MM-DD.
// An empty date yields the zero Key without error.
func NewKey(date, sport string) (Key, error) {
	s, err := ParseSport(sport)
	if err != nil {
		return Key{}, err
	}
	if strings.TrimSpace(date) == "" {
		return Key{Sport: s}, nil
	}
	parsed, err := timeutil.ParseDate(date)
	if err != nil {
		return Key{}, err
	}
	return Key{Date: timeutil.FormatDate(parsed), Sport: s}, nil
}

// Valid reports whether a session may run for the key.
func (k Key) Valid() bool {
	return k.Date != "" && k.Sport != ""
}

// CompactDate returns the date as YYYYMMDD, or "" when the date is unusable.
func (k Key) CompactDate() string {
	parsed, err := timeutil.ParseDate(k.Date)
	if err != nil {
		return ""
	}
	return timeutil.FormatCompact(parsed)
}

func (k Key) String() string {
	return string(k.Sport) + "/" + k.Date
}
