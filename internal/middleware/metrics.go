package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no registered route, keeping raw
// paths such as /track-request/<id> out of the metric labels.
const unmatchedRoute = "unmatched"

type httpObserver interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// RequestMetrics reports every request to observer by route template.
// Paths listed in skip, such as the scrape endpoint itself, are not recorded.
func RequestMetrics(observer httpObserver, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		ignored[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}
		if _, ok := ignored[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
