package command_buffer

import "github.com/Carmen-Shannon/oxy-pass/engine/profiler"

// CommandBufferBuilderOption is a functional option for configuring a CommandBuffer.
type CommandBufferBuilderOption func(cb *CommandBuffer)

// WithCounters sets the counters batch rebuilds and draw calls are reported to.
//
// Parameters:
//   - counters: the shared counter set
//
// Returns:
//   - CommandBufferBuilderOption: option function to apply
func WithCounters(counters *profiler.Counters) CommandBufferBuilderOption {
	return func(cb *CommandBuffer) {
		cb.counters = counters
	}
}
