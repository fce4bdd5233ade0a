package profiler

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// Profiler tracks frame rate, memory statistics and scheduler counters.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	counters *Counters
	now      func() time.Time
	logf     func(format string, args ...any)
}

// NewProfiler creates a new Profiler that reports the given counters alongside the
// frame statistics. Update interval defaults to 1 second.
//
// Parameters:
//   - counters: the counter set to report, may be nil
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(counters *Counters) *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		counters:       counters,
		now:            time.Now,
		logf:           log.Printf,
	}
}

// Counters returns the counter set reported by this profiler.
func (p *Profiler) Counters() *Counters {
	return p.counters
}

// SetUpdateInterval changes how often Tick logs. Non-positive values are ignored.
//
// Parameters:
//   - d: the new interval
func (p *Profiler) SetUpdateInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate, GC count/pause times, total memory and the
// scheduler counters when the update interval has elapsed.
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
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB%s",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB, p.counterSummary())

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// counterSummary formats the counters as " | name: value" pairs in token order.
func (p *Profiler) counterSummary() string {
	var sb strings.Builder
	for _, tok := range p.counters.Tokens() {
		fmt.Fprintf(&sb, " | %s: %g", tok, p.counters.Get(tok))
	}
	return sb.String()
}
