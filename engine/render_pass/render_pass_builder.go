package render_pass

import (
	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
)

// RenderPassBuilderOption is a functional option for configuring a RenderPass.
type RenderPassBuilderOption func(rp *renderPass)

// WithCapabilities sets the renderer capabilities consulted for GPU culling.
// Without it the pass always culls on the CPU.
//
// Parameters:
//   - caps: the renderer capabilities
//
// Returns:
//   - RenderPassBuilderOption: option function to apply
func WithCapabilities(caps renderer.Capabilities) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.caps = caps
	}
}

// WithToggles sets the debug toggles polled at every Prepare.
//
// Parameters:
//   - toggles: the debug toggles
//
// Returns:
//   - RenderPassBuilderOption: option function to apply
func WithToggles(toggles *debug.Toggles) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.toggles = toggles
	}
}

// WithCounters sets the counters the pass reports refreshes, item counts and draws to.
//
// Parameters:
//   - counters: the shared counter set
//
// Returns:
//   - RenderPassBuilderOption: option function to apply
func WithCounters(counters *profiler.Counters) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.counters = counters
	}
}

// WithCullWorkers sets how many workers frustum-cull buckets in parallel. Values of 1
// or less cull on the calling goroutine.
//
// Parameters:
//   - n: the number of cull workers
//
// Returns:
//   - RenderPassBuilderOption: option function to apply
func WithCullWorkers(n int) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.cullWorkers = n
	}
}
