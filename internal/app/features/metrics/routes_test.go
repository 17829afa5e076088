package metrics_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/features/metrics"
	"github.com/dalemusser/inkwell/internal/app/system/feedcache"
	"github.com/dalemusser/inkwell/internal/testutil"
)

func TestRoutes_ExposesFeedCacheCounters(t *testing.T) {
	c := feedcache.New[string, int]("metrics_test", time.Minute, nil)
	if _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}

	rec := testutil.NewRecorder()
	metrics.Routes().ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "go_goroutines")
	rec.AssertContains(t, `inkwell_feed_cache_lookups_total{cache="metrics_test",result="miss"} 1`)
}
