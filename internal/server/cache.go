package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracelens/pkg/insightsclient"
)

// cacheResponses serves insights responses from the TTL cache, keyed by
// route plus request body. Aggregates only go stale, they never become
// wrong, so entries are left to expire on their own. Only 200 responses
// are stored.
func cacheResponses(cache *insightsclient.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := c.FullPath() + "\n" + string(body)
		if data, ok := cache.Get(key); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			cache.Set(key, w.buf.Bytes())
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
