package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the common logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastFPS        float64

	now func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: how often statistics are logged; values <= 0 default to 1 second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	return newProfilerWithClock(interval, time.Now)
}

func newProfilerWithClock(interval time.Duration, now func() time.Time) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       now(),
		updateInterval: interval,
		now:            now,
	}
}

// FPS returns the frame rate measured over the last completed interval, or 0 before the first one.
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	common.Logger().Info("profiler",
		"fps", fps,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_pause_us", lastPauseUs,
		"gc_max_pause_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.lastFPS = fps
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
