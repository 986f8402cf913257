package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a Prometheus text exposition that is regathered every ttl
// instead of on every scrape. Validation runs publish one gauge per notice code and feed,
// so a live gather can get large.
type CachedPromHandler struct {
	mu         sync.RWMutex
	cache      []byte
	gatheredAt time.Time
	ttl        time.Duration
	h          http.Handler
}

// NewCachedPromHandler starts a background refresh of the cache that stops with ctx.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl: ttl,
		h:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true}),
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

func (c *CachedPromHandler) refresh() {
	rec := &responseRecorder{header: http.Header{}}
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	c.h.ServeHTTP(rec, req)
	if rec.status != 0 && rec.status != http.StatusOK {
		return
	}

	c.mu.Lock()
	c.cache = rec.buf.Bytes()
	c.gatheredAt = time.Now()
	c.mu.Unlock()
}

// ServeHTTP serves the cached exposition, or gathers live until the first refresh.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	cache, gatheredAt := c.cache, c.gatheredAt
	c.mu.RUnlock()

	if len(cache) == 0 {
		c.h.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.Header().Set("Last-Modified", gatheredAt.UTC().Format(http.TimeFormat))
	_, _ = w.Write(cache)
}

// responseRecorder captures what promhttp writes during a refresh.
type responseRecorder struct {
	buf    bytes.Buffer
	header http.Header
	status int
}

func (rr *responseRecorder) Write(b []byte) (int, error) { return rr.buf.Write(b) }
func (rr *responseRecorder) Header() http.Header         { return rr.header }
func (rr *responseRecorder) WriteHeader(statusCode int)  { rr.status = statusCode }
