package profiler

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCountersSetAddIncr(t *testing.T) {
	c := NewCounters()

	Set(c, TotalItemCount, 12)
	Add(c, TotalItemCount, uint8(3))
	Incr(c, CollectionsRefreshed)
	Incr(c, CollectionsRefreshed)
	Set(c, DrawItemsCulled, 2.5)

	if got := c.Get(TotalItemCount); got != 15 {
		t.Errorf("TotalItemCount = %g, want 15", got)
	}
	if got := c.Get(CollectionsRefreshed); got != 2 {
		t.Errorf("CollectionsRefreshed = %g, want 2", got)
	}
	if got := c.Get(DrawItemsCulled); got != 2.5 {
		t.Errorf("DrawItemsCulled = %g, want 2.5", got)
	}

	want := []Token{CollectionsRefreshed, DrawItemsCulled, TotalItemCount}
	got := c.Tokens()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	c.Reset()
	if got := c.Get(TotalItemCount); got != 0 {
		t.Errorf("after Reset TotalItemCount = %g, want 0", got)
	}
}

func TestCountersNilAndZeroValue(t *testing.T) {
	var nilSet *Counters
	Incr(nilSet, DrawCalls)
	if got := nilSet.Get(DrawCalls); got != 0 {
		t.Fatalf("nil set Get = %g, want 0", got)
	}

	var zero Counters
	Incr(&zero, DrawCalls)
	if got := zero.Get(DrawCalls); got != 1 {
		t.Fatalf("zero-value set Get = %g, want 1", got)
	}
}

func TestCountersConcurrentAdd(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				Incr(c, DrawCalls)
			}
		}()
	}
	wg.Wait()
	if got := c.Get(DrawCalls); got != 800 {
		t.Fatalf("DrawCalls = %g, want 800", got)
	}
}

func TestProfilerTickLogsAfterInterval(t *testing.T) {
	c := NewCounters()
	Set(c, TotalItemCount, 7)

	p := NewProfiler(c)
	start := time.Unix(1000, 0)
	now := start
	p.lastTime = start
	p.now = func() time.Time { return now }

	var lines []string
	p.logf = func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	now = start.Add(500 * time.Millisecond)
	if p.Tick() {
		t.Fatal("Tick logged before the interval elapsed")
	}

	now = start.Add(time.Second)
	if !p.Tick() {
		t.Fatal("Tick did not log after the interval elapsed")
	}
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "FPS: 2.00") {
		t.Errorf("log line %q missing FPS", lines[0])
	}
	if !strings.Contains(lines[0], "totalItemCount: 7") {
		t.Errorf("log line %q missing counter", lines[0])
	}
}
