// Package engine drives render passes frame by frame.
package engine

import (
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/pass_state"
	"github.com/Carmen-Shannon/oxy-pass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pass/engine/render_pass"
	"github.com/Carmen-Shannon/oxy-pass/engine/window"
)

// passEntry is a registered pass and the render tags it draws.
type passEntry struct {
	pass render_pass.RenderPass
	tags []draw_item.RenderTag
}

// engine implements the Engine interface.
// Coordinates the tick and render goroutines and, when a window is attached, the
// window message loop on the calling goroutine.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool
	toggles          *debug.Toggles

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	stateProvider  func(deltaTime float32) pass_state.PassState

	passes map[int]*passEntry

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point. It owns render passes keyed by z-index and runs
// them once per render frame in ascending key order.
type Engine interface {
	// Window returns the attached window, or nil when running headless.
	Window() window.Window

	// Toggles returns the debug toggles shared with the engine's passes.
	Toggles() *debug.Toggles

	// Counters returns the counter set reported by the profiler. Passes report into it
	// when built with render_pass.WithCounters(e.Counters()).
	Counters() *profiler.Counters

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for scene edits: inserting prims, moving the camera.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after every pass has executed,
	// typically to submit and present the frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetStateProvider registers the function that builds each frame's pass state, for
	// example by opening a render pass encoder and reading the camera.
	// Without one, passes run with an empty state and draw nothing.
	//
	// Parameters:
	//   - provider: function returning the state for the frame
	SetStateProvider(provider func(deltaTime float32) pass_state.PassState)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddPass registers a pass at the given z-index key, replacing any pass there.
	//
	// Parameters:
	//   - key: the z-index determining execution order (lower runs first)
	//   - p: the render pass
	//   - tags: the render tags the pass draws; none means every tag
	AddPass(key int, p render_pass.RenderPass, tags ...draw_item.RenderTag)

	// SetPassTags changes the tag filter of the pass at key and marks its collection
	// dirty so the next frame rebuilds it.
	//
	// Parameters:
	//   - key: the z-index of the pass
	//   - tags: the new tag filter
	SetPassTags(key int, tags ...draw_item.RenderTag)

	// RemovePass removes and releases the pass at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the pass to remove
	RemovePass(key int)

	// Pass retrieves the pass registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the pass
	//
	// Returns:
	//   - render_pass.RenderPass: the pass at the key, or nil if not found
	Pass(key int) render_pass.RenderPass

	// Passes returns a copy of all registered passes keyed by z-index.
	Passes() map[int]render_pass.RenderPass

	// MarkAllPassesDirty forces every pass to rebuild on the next frame.
	MarkAllPassesDirty()

	// RenderFrame executes every pass once in ascending key order with a state from the
	// state provider. The render loop calls it each frame; headless callers may drive it
	// directly.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	RenderFrame(deltaTime float32)

	// Run starts the tick and render loops. With a window it runs the window message
	// loop and returns when the window closes; headless it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		passes:           make(map[int]*passEntry),
		running:          false,
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.NewCounters())
	}
	if e.toggles == nil {
		e.toggles = debug.NewToggles()
	}
	e.toggles.OnRefresh(e.MarkAllPassesDirty)

	if e.window != nil {
		e.window.SetKeyDownCallback(func(keyCode uint32) {
			e.toggles.HandleKey(keyCode)
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Toggles() *debug.Toggles {
	return e.toggles
}

func (e *engine) Counters() *profiler.Counters {
	return e.profiler.Counters()
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// handle launches the engine and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.RenderFrame(dt)

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

func (e *engine) RenderFrame(deltaTime float32) {
	var state pass_state.PassState
	if e.stateProvider != nil {
		state = e.stateProvider(deltaTime)
	}
	if state == nil {
		state = pass_state.NewPassState()
	}

	e.mu.Lock()
	entries := make([]passEntry, 0, len(e.passes))
	for _, k := range slices.Sorted(maps.Keys(e.passes)) {
		entries = append(entries, *e.passes[k])
	}
	e.mu.Unlock()

	for _, entry := range entries {
		entry.pass.Execute(state, entry.tags)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetStateProvider(provider func(deltaTime float32) pass_state.PassState) {
	e.stateProvider = provider
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddPass(key int, p render_pass.RenderPass, tags ...draw_item.RenderTag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passes[key] = &passEntry{pass: p, tags: slices.Clone(tags)}
}

func (e *engine) SetPassTags(key int, tags ...draw_item.RenderTag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.passes[key]
	if !ok {
		return
	}
	e.passes[key] = &passEntry{pass: entry.pass, tags: slices.Clone(tags)}
	entry.pass.MarkCollectionDirty()
}

func (e *engine) RemovePass(key int) {
	e.mu.Lock()
	entry, ok := e.passes[key]
	delete(e.passes, key)
	e.mu.Unlock()
	if ok {
		entry.pass.Release()
	}
}

func (e *engine) Pass(key int) render_pass.RenderPass {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.passes[key]; ok {
		return entry.pass
	}
	return nil
}

func (e *engine) Passes() map[int]render_pass.RenderPass {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]render_pass.RenderPass, len(e.passes))
	for k, v := range e.passes {
		cp[k] = v.pass
	}
	return cp
}

func (e *engine) MarkAllPassesDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range e.passes {
		entry.pass.MarkCollectionDirty()
	}
}
