package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pass/engine/render_pass"
	"github.com/Carmen-Shannon/oxy-pass/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler, and with it the counter set passes report into.
//
// Parameters:
//   - p: the profiler to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithToggles shares debug toggles between the engine's key bindings and its passes.
//
// Parameters:
//   - t: the debug toggles
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithToggles(t *debug.Toggles) EngineBuilderOption {
	return func(e *engine) {
		e.toggles = t
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow attaches a window. Run then drives its message loop, and its key presses
// flip the debug toggles.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithPass registers a pass at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining execution order (lower runs first)
//   - p: the render pass
//   - tags: the render tags the pass draws; none means every tag
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPass(key int, p render_pass.RenderPass, tags ...draw_item.RenderTag) EngineBuilderOption {
	return func(e *engine) {
		e.passes[key] = &passEntry{pass: p, tags: tags}
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
