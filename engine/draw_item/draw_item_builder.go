package draw_item

import (
	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

// DrawItemBuilderOption is a functional option for configuring a DrawItem.
type DrawItemBuilderOption func(d *drawItem)

// WithRenderTag sets the item's render tag. Defaults to TagGeometry.
//
// Parameters:
//   - tag: the render tag
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithRenderTag(tag RenderTag) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.renderTag = tag
	}
}

// WithBounds sets the item's world-space bounds.
//
// Parameters:
//   - bounds: the bounding box
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithBounds(bounds common.AABB) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.bounds = bounds
	}
}

// WithVisible sets the item's authored visibility. Defaults to true.
//
// Parameters:
//   - visible: whether the prim is visible
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithVisible(visible bool) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.visible = visible
	}
}

// WithPipelineKey sets the pipeline used to draw the item.
//
// Parameters:
//   - key: the pipeline key registered in the resource registry
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithPipelineKey(key string) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.pipelineKey = key
	}
}

// WithMeshProvider sets the provider holding the item's mesh buffers.
//
// Parameters:
//   - p: the mesh provider
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithMeshProvider(p bind_group_provider.BindGroupProvider) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.meshProvider = p
	}
}

// WithInstanceCount sets how many instances the item draws. Defaults to 1.
//
// Parameters:
//   - n: the instance count (negative values are clamped to 0)
//
// Returns:
//   - DrawItemBuilderOption: option function to apply
func WithInstanceCount(n int) DrawItemBuilderOption {
	return func(d *drawItem) {
		d.instanceCount = max(n, 0)
	}
}
