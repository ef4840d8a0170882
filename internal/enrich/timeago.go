// Package enrich holds the stateless text heuristics every provider adapter
// runs its listings through: recency labels, practice-area and experience
// classification, requirement extraction and description cleanup.
//
// Classification is best effort. Unrecognised text falls through to generic
// defaults rather than failing.
package enrich

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// RelativeTime buckets the time elapsed between ts and now into a human
// phrase, flooring to whole days. Timestamps in the future count as Today.
func RelativeTime(now, ts time.Time) string {
	days := int(now.Sub(ts) / day)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 14:
		return "1 week ago"
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
	months := days / 30
	if months == 1 {
		return "1 month ago"
	}
	return fmt.Sprintf("%d months ago", months)
}

// Posted formats ts relative to the wall clock. A zero timestamp, i.e. a
// provider that did not report one, yields "Recently".
func Posted(ts time.Time) string {
	if ts.IsZero() {
		return "Recently"
	}
	return RelativeTime(time.Now(), ts)
}

// postedLayouts are the timestamp formats seen across provider payloads.
var postedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseTimestamp tries each known provider layout in turn. It returns the
// zero time when none match.
func ParseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range postedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
