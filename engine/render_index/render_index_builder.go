package render_index

import (
	"github.com/Carmen-Shannon/oxy-pass/engine/change_tracker"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
)

// RenderIndexBuilderOption is a functional option for configuring a RenderIndex.
type RenderIndexBuilderOption func(ri *renderIndex)

// WithChangeTracker sets the tracker that versions the index's edits.
//
// Parameters:
//   - tracker: the change tracker to use
//
// Returns:
//   - RenderIndexBuilderOption: option function to apply
func WithChangeTracker(tracker change_tracker.ChangeTracker) RenderIndexBuilderOption {
	return func(ri *renderIndex) {
		ri.tracker = tracker
	}
}

// WithResourceRegistry sets the GPU resource registry shared with render passes.
//
// Parameters:
//   - registry: the resource registry to use
//
// Returns:
//   - RenderIndexBuilderOption: option function to apply
func WithResourceRegistry(registry *renderer.ResourceRegistry) RenderIndexBuilderOption {
	return func(ri *renderIndex) {
		ri.registry = registry
	}
}
