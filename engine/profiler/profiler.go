// Package profiler aggregates per-update timings and memory statistics and reports them through slog
// at a fixed interval.
package profiler

import (
	"log/slog"
	"runtime"
	"sort"
	"time"
)

// PhaseStats summarises one named phase over a reporting window.
type PhaseStats struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average duration of the phase, or zero if it never ran.
func (s PhaseStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Report is the data logged at the end of a reporting window.
type Report struct {
	UpdatesPerSecond float64
	HeapMB           float64
	SysMB            float64
	AllocRateMB      float64
	GCCount          uint32
	LastPauseUs      uint64
	MaxPauseUs       uint64
	Phases           map[string]PhaseStats
}

// Profiler tracks update rate, phase timings and memory statistics.
type Profiler struct {
	updateCount    int
	lastTime       time.Time
	updateInterval time.Duration
	phases         map[string]PhaseStats
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now    func() time.Time
	logger *slog.Logger
	last   Report
}

// NewProfiler creates a new Profiler. The reporting interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		phases:         make(map[string]PhaseStats),
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	// the first window only counts what happens after construction
	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastTime = p.now()
	return p
}

// Measure times fn and records it under phase.
//
// Parameters:
//   - phase: the phase name, e.g. "update_matrices"
//   - fn: the work to time
func (p *Profiler) Measure(phase string, fn func()) {
	start := p.now()
	fn()
	p.Observe(phase, p.now().Sub(start))
}

// Observe records one run of phase that took d.
func (p *Profiler) Observe(phase string, d time.Duration) {
	s := p.phases[phase]
	s.Count++
	s.Total += d
	s.Max = max(s.Max, d)
	p.phases[phase] = s
}

// Tick should be called once per update. When the interval has elapsed it logs a Report at info
// level and starts a new window.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.updateCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		UpdatesPerSecond: float64(p.updateCount) / elapsed.Seconds(),
		HeapMB:           float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:            float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:      float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:          p.memStats.NumGC,
		Phases:           p.phases,
	}

	// PauseNs is a circular buffer of the last 256 pauses
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	attrs := []any{
		"ups", r.UpdatesPerSecond,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	}
	names := make([]string, 0, len(r.Phases))
	for name := range r.Phases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Phases[name]
		attrs = append(attrs, slog.Group(name, "count", s.Count, "mean", s.Mean(), "max", s.Max))
	}
	p.logger.Info("profiler: stats", attrs...)

	p.last = r
	p.updateCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.phases = make(map[string]PhaseStats, len(r.Phases))
	return true
}

// Last returns the most recently logged report.
func (p *Profiler) Last() Report {
	return p.last
}
