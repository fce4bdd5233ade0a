package profiler

import (
	"maps"
	"slices"
	"sync"

	"golang.org/x/exp/constraints"
)

// Token names a diagnostic counter.
type Token string

// Counters reported by render passes.
const (
	// CollectionsRefreshed counts full command-buffer rebuilds caused by a collection change.
	CollectionsRefreshed Token = "collectionsRefreshed"
	// TotalItemCount is the number of draw items bucketed by the last rebuild.
	TotalItemCount Token = "totalItemCount"
	// DrawItemsCulled is the number of draw items that survived the last cull or visibility sync.
	DrawItemsCulled Token = "drawItemsCulled"
	// DrawBatchesRebuilt counts batch re-encodings caused by a shader-bindings change.
	DrawBatchesRebuilt Token = "drawBatchesRebuilt"
	// DrawCalls counts draw commands submitted to an encoder.
	DrawCalls Token = "drawCalls"
)

// Counters is a set of named diagnostic values. The zero value is ready to use
// and it is safe for concurrent use, so several render passes may share one.
type Counters struct {
	mu     sync.Mutex
	values map[Token]float64
}

// NewCounters creates an empty counter set.
//
// Returns:
//   - *Counters: the new counter set
func NewCounters() *Counters {
	return &Counters{values: make(map[Token]float64)}
}

// Get returns the current value of the counter, or 0 if it was never written.
// A nil receiver always returns 0.
func (c *Counters) Get(name Token) float64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Tokens returns the names of every counter written so far, sorted.
func (c *Counters) Tokens() []Token {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.values))
}

// Reset clears every counter.
func (c *Counters) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
}

func (c *Counters) update(name Token, fn func(old float64) float64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[Token]float64)
	}
	c.values[name] = fn(c.values[name])
}

// Set stores v in the named counter. Calls on a nil set are no-ops.
//
// Parameters:
//   - c: the counter set
//   - name: the counter to write
//   - v: the new value
func Set[T constraints.Integer | constraints.Float](c *Counters, name Token, v T) {
	c.update(name, func(float64) float64 { return float64(v) })
}

// Add adds delta to the named counter. Calls on a nil set are no-ops.
//
// Parameters:
//   - c: the counter set
//   - name: the counter to increment
//   - delta: the amount to add
func Add[T constraints.Integer | constraints.Float](c *Counters, name Token, delta T) {
	c.update(name, func(old float64) float64 { return old + float64(delta) })
}

// Incr adds one to the named counter.
//
// Parameters:
//   - c: the counter set
//   - name: the counter to increment
func Incr(c *Counters, name Token) {
	Add(c, name, 1)
}
