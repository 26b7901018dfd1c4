package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	start time.Time
	count int
}

// RateLimit applies a fixed-window request limit per client IP across the
// whole API group. Windows are kept in memory and dropped once they expire.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	windows := map[string]*rateWindow{}

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		w, ok := windows[ip]
		if !ok || now.Sub(w.start) >= window {
			// New window; also a cheap moment to shed other expired entries.
			for k, v := range windows {
				if now.Sub(v.start) >= window {
					delete(windows, k)
				}
			}
			w = &rateWindow{start: now}
			windows[ip] = w
		}
		w.count++
		exceeded := w.count > max
		mu.Unlock()

		if exceeded {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
