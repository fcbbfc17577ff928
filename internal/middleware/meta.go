package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// ResponseMeta attaches a metadata map to the request so handlers can report
// cache and simulation details alongside the payload.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{"started_at": time.Now()})
		c.Next()
	}
}

// MarkCacheHit records whether the payload came from cache.
func MarkCacheHit(c *gin.Context, hit bool) {
	meta(c)["cache_hit"] = hit
}

// MarkSimulated flags a response whose effect was only simulated.
func MarkSimulated(c *gin.Context) {
	meta(c)["simulated"] = true
}

// Meta returns the collected metadata with processing time filled in.
// The internal start timestamp is not exposed.
func Meta(c *gin.Context) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range meta(c) {
		if k == "started_at" {
			if start, ok := v.(time.Time); ok {
				out["processing_time_ms"] = time.Since(start).Milliseconds()
			}
			continue
		}
		out[k] = v
	}
	return out
}

func meta(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(responseMetaKey); ok {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	m := map[string]interface{}{"started_at": time.Now()}
	c.Set(responseMetaKey, m)
	return m
}
