package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"etherplot/expr"
	"etherplot/render"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveFrame(t *testing.T) {
	c := New()
	c.ObserveFrame(render.FrameStats{
		Plots: 3, Drawn: 2, Invalid: 1, Samples: 600, Evicted: 1,
		GridStep: 0.5, GridChanged: true,
		Cache:    expr.CacheStats{Entries: 3, Hits: 0, Misses: 3},
		Duration: 2 * time.Millisecond,
	})
	c.ObserveFrame(render.FrameStats{
		Plots: 3, Drawn: 3, Samples: 900,
		GridStep: 0.5,
		Cache:    expr.CacheStats{Entries: 3, Hits: 3, Misses: 3},
		Duration: time.Millisecond,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.frames))
	assert.Equal(t, 1500.0, testutil.ToFloat64(c.samples))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.plots.WithLabelValues("drawn")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.plots.WithLabelValues("invalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cacheEntries))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheEvicted))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.gridStep))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gridChanges))
	assert.Equal(t, 3, testutil.CollectAndCount(c.plots))
}

func TestCollector_CacheReset(t *testing.T) {
	c := New()
	c.ObserveFrame(render.FrameStats{Cache: expr.CacheStats{Hits: 10}})
	c.ObserveFrame(render.FrameStats{Cache: expr.CacheStats{Hits: 2}})
	assert.Equal(t, 12.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.ObserveFrame(render.FrameStats{Plots: 1, Drawn: 1})
	c.StoreError("sync")

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "etherplot_frames_total 1"), text)
	assert.True(t, strings.Contains(text, `etherplot_store_errors_total{op="sync"} 1`), text)
}
