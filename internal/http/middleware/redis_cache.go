package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	rplatform "referral-giveaway-bot/internal/platform/redis"
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder keeps a copy of everything written to the response.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// RedisCache caches GET responses for a short TTL. Keyed by method+full URL.
func RedisCache(rdb *rplatform.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || ttl <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := "httpcache:" + c.Request.Method + ":" + c.Request.URL.RequestURI()

		if bs, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil && len(bs) > 0 {
			var entry cachedResponse
			if json.Unmarshal(bs, &entry) == nil {
				c.Header("X-Cache", "HIT")
				c.Data(entry.Status, entry.ContentType, entry.Body)
				c.Abort()
				return
			}
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Header("X-Cache", "MISS")
		c.Next()

		status := rec.Status()
		if status >= 200 && status < 300 {
			entry := cachedResponse{Status: status, ContentType: rec.Header().Get("Content-Type"), Body: rec.buf.Bytes()}
			if payload, err := json.Marshal(entry); err == nil {
				_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
		}
	}
}
