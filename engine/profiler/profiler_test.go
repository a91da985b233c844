package profiler

import (
	"bytes"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var logs bytes.Buffer
	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for range 9 {
		clock.advance(100 * time.Millisecond)
		p.Observe("update_matrices", 2*time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(100 * time.Millisecond)
	p.Observe("update_matrices", 6*time.Millisecond)
	require.True(t, p.Tick())

	r := p.Last()
	assert.InDelta(t, 10.0, r.UpdatesPerSecond, 1e-9)
	stats := r.Phases["update_matrices"]
	assert.Equal(t, 10, stats.Count)
	assert.Equal(t, 6*time.Millisecond, stats.Max)
	assert.Equal(t, 2400*time.Microsecond, stats.Mean())
	assert.Contains(t, logs.String(), "profiler: stats")
	assert.Contains(t, logs.String(), "update_matrices.count=10")

	// a new window starts empty
	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.Empty(t, p.Last().Phases)
}

func TestMeasure(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	p.Measure("render_list", func() { clock.advance(3 * time.Millisecond) })
	assert.Equal(t, PhaseStats{Count: 1, Total: 3 * time.Millisecond, Max: 3 * time.Millisecond}, p.phases["render_list"])
	assert.Equal(t, time.Duration(0), PhaseStats{}.Mean())
}

func TestFirstWindowExcludesEarlierAllocations(t *testing.T) {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	assert.GreaterOrEqual(t, p.lastTotalAlloc, before.TotalAlloc)
	assert.GreaterOrEqual(t, p.lastGCCount, before.NumGC)

	clock.advance(time.Second)
	require.True(t, p.Tick())

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	sinceBefore := float64(after.TotalAlloc-before.TotalAlloc) / 1024 / 1024
	assert.LessOrEqual(t, p.Last().AllocRateMB, sinceBefore)
}
