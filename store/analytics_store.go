// api/store/analytics_store.go
package store

import (
	"sort"
	"time"

	"alsafaglobal/api/models"
	"alsafaglobal/api/utils"
)

const topClicksLimit = 20

// AnalyticsStore computes summaries over the raw event log. Buckets and
// sessions are rebuilt from the log on every call; no aggregate state is
// maintained between requests.
type AnalyticsStore struct {
	Events *EventStore
	// Loc is the location used for bucket truncation (bucket starts are
	// local midnights). Defaults to the server's location.
	Loc *time.Location
}

// SummaryOptions selects the range and bucketing for one summarize call.
// From/To are inclusive; Compare is honored only when both bounds are set.
type SummaryOptions struct {
	Granularity string
	From        *time.Time
	To          *time.Time
	Compare     bool
}

func NewAnalyticsStore(events *EventStore) *AnalyticsStore {
	return &AnalyticsStore{
		Events: events,
		Loc:    time.Local,
	}
}

// Summarize reads the full event log, buckets the in-range events by the
// requested granularity and derives whole-range session metrics. Rates and
// averages are defined as 0 when their denominator is 0.
func (s *AnalyticsStore) Summarize(opts SummaryOptions) (*models.Summary, error) {
	granularity := utils.NormalizeGranularity(opts.Granularity)

	all, err := s.Events.ReadAll()
	if err != nil {
		return nil, err
	}

	events := filterByRange(all, opts.From, opts.To)

	buckets := map[time.Time]*models.TimelineBucket{}
	bucketSessions := map[time.Time]map[string]struct{}{}
	sessionTimes := map[string][]time.Time{}
	sessionPages := map[string]int{}

	totalPageviews := 0
	totalClicks := 0
	loadTimeTotal := 0.0
	loadTimeCount := 0

	for _, e := range events {
		start := utils.StartOfBucket(e.Timestamp, granularity, s.Loc)
		b, ok := buckets[start]
		if !ok {
			b = &models.TimelineBucket{From: start, Key: bucketKey(start)}
			buckets[start] = b
			bucketSessions[start] = map[string]struct{}{}
		}

		switch e.Type {
		case models.EventTypePageview:
			b.Pageviews++
			totalPageviews++
			if e.Meta.LoadTimeMs != nil {
				loadTimeTotal += *e.Meta.LoadTimeMs
				loadTimeCount++
			}
		case models.EventTypeClick:
			b.Clicks++
			totalClicks++
		}

		if sid := e.Meta.SessionID; sid != nil && *sid != "" {
			bucketSessions[start][*sid] = struct{}{}
			sessionTimes[*sid] = append(sessionTimes[*sid], e.Timestamp)
			if e.Type == models.EventTypePageview {
				sessionPages[*sid]++
			}
		}
	}

	timeline := make([]models.TimelineBucket, 0, len(buckets))
	for start, b := range buckets {
		b.Sessions = len(bucketSessions[start])
		timeline = append(timeline, *b)
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].From.Before(timeline[j].From)
	})

	summary := &models.Summary{
		Granularity:      granularity,
		From:             formatBound(opts.From),
		To:               formatBound(opts.To),
		TotalPageviews:   totalPageviews,
		TotalClicks:      totalClicks,
		Timeline:         timeline,
		PreviousTimeline: []models.CompareBucket{},
		TopClicks:        topClicks(events),
	}
	if loadTimeCount > 0 {
		summary.AvgPageLoadTimeMs = loadTimeTotal / float64(loadTimeCount)
	}

	s.applySessionMetrics(summary, sessionTimes, sessionPages)

	if opts.Compare && opts.From != nil && opts.To != nil {
		summary.PreviousTimeline = s.compareTimeline(all, granularity, *opts.From, *opts.To)
	}

	return summary, nil
}

// applySessionMetrics folds the per-session groupings into the whole-range
// derived metrics. A session's duration is the spread across all its events,
// but is defined as 0 unless it saw more than one pageview.
func (s *AnalyticsStore) applySessionMetrics(summary *models.Summary, sessionTimes map[string][]time.Time, sessionPages map[string]int) {
	totalSessions := len(sessionTimes)
	summary.TotalSessions = totalSessions
	if totalSessions == 0 {
		return
	}

	totalPages := 0
	totalDurationSec := 0.0
	bounced := 0
	for sid, times := range sessionTimes {
		pages := sessionPages[sid]
		totalPages += pages
		if pages <= 1 {
			bounced++
		}
		if pages > 1 {
			min, max := times[0], times[0]
			for _, t := range times[1:] {
				if t.Before(min) {
					min = t
				}
				if t.After(max) {
					max = t
				}
			}
			totalDurationSec += max.Sub(min).Seconds()
		}
	}

	summary.BounceRate = float64(bounced) / float64(totalSessions)
	summary.AvgPagesPerSession = float64(totalPages) / float64(totalSessions)
	summary.AvgSessionDurationSec = totalDurationSec / float64(totalSessions)
}

// compareTimeline buckets the window of identical length immediately
// preceding [from, to], reporting per-bucket session counts only.
func (s *AnalyticsStore) compareTimeline(all []models.Event, granularity string, from, to time.Time) []models.CompareBucket {
	span := to.Sub(from)
	prevFrom := from.Add(-span - time.Millisecond)
	prevTo := from.Add(-time.Millisecond)

	prev := filterByRange(all, &prevFrom, &prevTo)

	buckets := map[time.Time]*models.CompareBucket{}
	bucketSessions := map[time.Time]map[string]struct{}{}
	for _, e := range prev {
		start := utils.StartOfBucket(e.Timestamp, granularity, s.Loc)
		if _, ok := buckets[start]; !ok {
			buckets[start] = &models.CompareBucket{From: start, Key: bucketKey(start)}
			bucketSessions[start] = map[string]struct{}{}
		}
		if sid := e.Meta.SessionID; sid != nil && *sid != "" {
			bucketSessions[start][*sid] = struct{}{}
		}
	}

	out := make([]models.CompareBucket, 0, len(buckets))
	for start, b := range buckets {
		b.Sessions = len(bucketSessions[start])
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].From.Before(out[j].From)
	})
	return out
}

// topClicks ranks click targets by (pagePath, element, leading text) and
// returns the 20 most frequent. Ties keep first-seen order.
func topClicks(events []models.Event) []models.TopClick {
	counts := map[string]int{}
	order := []string{}
	for _, e := range events {
		if e.Type != models.EventTypeClick {
			continue
		}
		label := derefOr(e.PagePath, "") + " :: " + derefOr(e.Element, "") + " :: " + truncateRunes(derefOr(e.Text, ""), 60)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	ranked := make([]models.TopClick, 0, len(order))
	for _, label := range order {
		ranked = append(ranked, models.TopClick{Label: label, Count: counts[label]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topClicksLimit {
		ranked = ranked[:topClicksLimit]
	}
	return ranked
}

func filterByRange(events []models.Event, from, to *time.Time) []models.Event {
	if from == nil && to == nil {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if from != nil && e.Timestamp.Before(*from) {
			continue
		}
		if to != nil && e.Timestamp.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func bucketKey(start time.Time) string {
	return start.UTC().Format(time.RFC3339)
}

func formatBound(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
