package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-rsm/common"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	timer          *Timer
	stats          FrameStats
	lastLog        time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - d: the logging interval
//
// Returns:
//   - ProfilerBuilderOption: functional option to set the interval
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock sets the time source.
//
// Parameters:
//   - clock: the clock to read
//
// Returns:
//   - ProfilerBuilderOption: functional option to set the clock
func WithClock(clock Clock) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.timer = NewTimer(clock)
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		timer:          NewTimer(nil),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastLog = p.timer.Now()
	p.stats.Restart(p.lastLog)
	return p
}

// Stats returns a copy of the frame statistics.
func (p *Profiler) Stats() FrameStats {
	return p.stats
}

// Tick should be called once per frame. Logs FPS, frame time, heap usage, allocation rate and
// GC pauses when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := p.timer.Now()
	p.stats.Tick(now)

	elapsed := now.Sub(p.lastLog)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	common.Logger().Info("frame stats",
		"fps", p.stats.FPS,
		"frame_time", p.stats.FrameTime,
		"heap_mb", float64(p.memStats.Alloc)/1024/1024,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_pause", lastPause,
		"gc_max_pause", maxPause,
		"sys_mb", float64(p.memStats.Sys)/1024/1024,
	)

	p.lastLog = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
