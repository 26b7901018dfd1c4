// api/handlers/analytics_handlers.go
package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alsafaglobal/api/models"
	"alsafaglobal/api/store"
)

type AnalyticsHandlers struct {
	Store *store.AnalyticsStore
}

func NewAnalyticsHandlers(s *store.AnalyticsStore) *AnalyticsHandlers {
	return &AnalyticsHandlers{Store: s}
}

// TrackEvent ingests one tracking event from the marketing site. The response
// does not wait on durability: append failures are logged and the caller still
// gets 204 (best-effort ingestion).
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	eventType, _ := payload["type"].(string)
	if eventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type is required"})
		return
	}
	if !models.IsValidEventType(eventType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be pageview or click"})
		return
	}

	evt := models.NormalizeTrackPayload(payload, time.Now().UTC())
	if err := h.Store.Events.Append(evt); err != nil {
		log.Printf("Failed to write analytics event: %v", err)
	}

	c.Status(http.StatusNoContent)
}

// GetSummary builds the aggregated analytics view for the requested range.
func (h *AnalyticsHandlers) GetSummary(c *gin.Context) {
	opts := store.SummaryOptions{
		Granularity: c.DefaultQuery("granularity", "day"),
		Compare:     c.Query("compare") == "1",
	}

	from, ok := parseBound(c, "from")
	if !ok {
		return
	}
	to, ok := parseBound(c, "to")
	if !ok {
		return
	}
	if from != nil && to != nil && from.After(*to) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "'from' must not be after 'to'"})
		return
	}
	opts.From = from
	opts.To = to

	summary, err := h.Store.Summarize(opts)
	if err != nil {
		log.Printf("Error building analytics summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to build analytics summary",
			"error":   "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SeedDemoData populates the event log with synthetic traffic. Destructive
// when reset=1, so the route sits behind the auth guard.
func (h *AnalyticsHandlers) SeedDemoData(c *gin.Context) {
	days := 14
	if daysParam := c.Query("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid 'days' parameter"})
			return
		}
		days = parsed
	}
	reset := c.Query("reset") == "1"

	report, err := h.Store.SeedDemoData(days, reset)
	if err != nil {
		log.Printf("Seed failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Seed failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseBound reads an optional instant bound from the query string, accepting
// RFC3339 or a plain date. On a malformed value it writes the 400 response and
// returns ok=false.
func parseBound(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid '" + name + "' date. Use RFC3339 or YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}
