// api/models/summary.go
package models

import "time"

// TimelineBucket is one granularity-sized window of the summary timeline.
type TimelineBucket struct {
	Pageviews int       `json:"pageviews"`
	Clicks    int       `json:"clicks"`
	Sessions  int       `json:"sessions"`
	From      time.Time `json:"from"`
	Key       string    `json:"key"`
}

// CompareBucket is a previous-period bucket; only session counts are reported
// for the comparison timeline.
type CompareBucket struct {
	Sessions int       `json:"sessions"`
	From     time.Time `json:"from"`
	Key      string    `json:"key"`
}

// TopClick is one ranked click target: the page path, element label and the
// leading text of the clicked element, joined into a display label.
type TopClick struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the full analytics response for one time range.
type Summary struct {
	Granularity           string           `json:"granularity"`
	From                  *string          `json:"from"`
	To                    *string          `json:"to"`
	TotalSessions         int              `json:"totalSessions"`
	TotalPageviews        int              `json:"totalPageviews"`
	TotalClicks           int              `json:"totalClicks"`
	BounceRate            float64          `json:"bounceRate"`
	AvgPagesPerSession    float64          `json:"avgPagesPerSession"`
	AvgSessionDurationSec float64          `json:"avgSessionDurationSec"`
	AvgPageLoadTimeMs     float64          `json:"avgPageLoadTimeMs"`
	Timeline              []TimelineBucket `json:"timeline"`
	PreviousTimeline      []CompareBucket  `json:"previousTimeline"`
	TopClicks             []TopClick       `json:"topClicks"`
}

// SeedReport describes the outcome of a demo-data seeding run.
type SeedReport struct {
	OK    bool `json:"ok"`
	Days  int  `json:"days"`
	Reset bool `json:"reset"`
}
