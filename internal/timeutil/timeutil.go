package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout defines the hyphenated calendar format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CompactLayout is the upstream provider's date format (YYYYMMDD).
const CompactLayout = "20060102"

// ParseDate parses either a YYYY-MM-DD or a YYYYMMDD date string.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(CompactLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or YYYYMMDD)", value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatCompact formats a time as YYYYMMDD in its current location.
func FormatCompact(t time.Time) string {
	return t.Format(CompactLayout)
}
