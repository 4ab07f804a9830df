package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestHandlerExposesFeedMetrics(t *testing.T) {
	RecordCacheLookup("graph", ResultHit)
	RecordInvalidationFailure()
	ObserveFeed("home", time.Now(), nil)
	ObserveHydration(20)

	body := scrape(t)
	assert.Contains(t, body, `feedgraph_cache_lookups_total{cache="graph",result="hit"}`)
	assert.Contains(t, body, "feedgraph_cache_invalidation_failures_total")
	assert.Contains(t, body, `feedgraph_feed_assemble_duration_seconds_count{feed="home",status="ok"}`)
	assert.Contains(t, body, "feedgraph_feed_hydration_batch_size_count")
}
