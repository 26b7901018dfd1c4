// api/store/seed.go
package store

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"alsafaglobal/api/models"
)

const (
	seedMinDays = 1
	seedMaxDays = 90
)

var (
	seedPages      = []string{"/", "/about", "/divisions", "/contact", "/quote"}
	seedDevices    = []string{"desktop", "mobile", "tablet"}
	seedClickTexts = []string{"Get Quote", "Learn More", "Contact", "Submit"}
)

// SeedDemoData synthesizes plausible traffic for the most recent `days`
// calendar days, clamped to [1, 90]. Every event goes through the same
// Append path as real ingestion. Seeding is not idempotent; pass reset to
// empty the log first.
func (s *AnalyticsStore) SeedDemoData(days int, reset bool) (models.SeedReport, error) {
	if days < seedMinDays {
		days = seedMinDays
	}
	if days > seedMaxDays {
		days = seedMaxDays
	}

	if reset {
		if err := s.Events.Reset(); err != nil {
			return models.SeedReport{}, err
		}
	}

	now := time.Now().In(s.Loc)
	for d := days - 1; d >= 0; d-- {
		day := now.AddDate(0, 0, -d)
		base := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, s.Loc)
		if err := s.seedDay(base); err != nil {
			return models.SeedReport{}, fmt.Errorf("failed to seed demo day %s: %w", base.Format("2006-01-02"), err)
		}
	}

	return models.SeedReport{OK: true, Days: days, Reset: reset}, nil
}

func (s *AnalyticsStore) seedDay(base time.Time) error {
	sessions := gofakeit.Number(30, 120)
	for i := 0; i < sessions; i++ {
		clientID := uuid.NewString()
		sessionID := uuid.NewString()
		device := seedDevices[gofakeit.Number(0, len(seedDevices)-1)]
		ua := gofakeit.UserAgent()
		width, height := viewportFor(device)

		t := base
		pageviews := gofakeit.Number(1, 5)
		for p := 0; p < pageviews; p++ {
			pagePath := seedPages[gofakeit.Number(0, len(seedPages)-1)]
			t = t.Add(time.Duration(gofakeit.Number(5, 600)) * time.Second)
			loadTime := float64(gofakeit.Number(800, 3500))

			err := s.Events.Append(models.Event{
				Type:     models.EventTypePageview,
				PagePath: &pagePath,
				Meta: models.EventMeta{
					ClientID:   &clientID,
					SessionID:  &sessionID,
					Device:     &device,
					LoadTimeMs: &loadTime,
					UA:         &ua,
					Width:      &width,
					Height:     &height,
				},
				Timestamp: t,
			})
			if err != nil {
				return err
			}

			clicks := gofakeit.Number(0, 3)
			for c := 0; c < clicks; c++ {
				element := "BUTTON"
				text := seedClickTexts[gofakeit.Number(0, len(seedClickTexts)-1)]
				clickAt := t.Add(time.Duration(gofakeit.Number(2, 120)) * time.Second)

				err := s.Events.Append(models.Event{
					Type:     models.EventTypeClick,
					PagePath: &pagePath,
					Element:  &element,
					Text:     &text,
					Meta: models.EventMeta{
						ClientID:  &clientID,
						SessionID: &sessionID,
						Device:    &device,
						UA:        &ua,
					},
					Timestamp: clickAt,
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func viewportFor(device string) (width, height float64) {
	switch device {
	case "desktop":
		return 1440, 900
	case "tablet":
		return 1024, 800
	default:
		return 390, 800
	}
}
