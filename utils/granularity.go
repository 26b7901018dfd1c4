package utils

import (
	"strings"
	"time"
)

// Granularity names accepted by the summary endpoint.
const (
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
	GranularityYear  = "year"
)

// NormalizeGranularity lowercases g and falls back to "day" for anything
// unrecognized. The summary endpoint never rejects a granularity value.
func NormalizeGranularity(g string) string {
	g = strings.ToLower(g)
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return g
	default:
		return GranularityDay
	}
}

// StartOfBucket truncates t to the start of its containing bucket in loc.
// Weeks start on Monday.
func StartOfBucket(t time.Time, granularity string, loc *time.Location) time.Time {
	t = t.In(loc)
	switch granularity {
	case GranularityWeek:
		day := startOfDay(t, loc)
		// Monday = 0 offset; Sunday rolls back 6 days.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case GranularityYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return startOfDay(t, loc)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
