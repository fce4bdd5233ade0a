package renderer

import (
	"sync/atomic"

	"github.com/gogpu/gpucontext"
)

// Capabilities reports the draw-submission features of the render context. Render
// passes poll it once per Prepare, so implementations may change between frames.
type Capabilities interface {
	// MultiDrawIndirectEnabled reports whether indirect multi-draw submission is available.
	MultiDrawIndirectEnabled() bool

	// GPUFrustumCullingEnabled reports whether draw batches cull on the GPU.
	// It only takes effect when MultiDrawIndirectEnabled is also true.
	GPUFrustumCullingEnabled() bool
}

// RenderContextCaps is the default Capabilities implementation. Both flags start
// disabled and can be flipped at runtime from any goroutine.
type RenderContextCaps struct {
	multiDrawIndirect atomic.Bool
	gpuFrustumCulling atomic.Bool
	adapter           gpucontext.AdapterInfo
}

var _ Capabilities = &RenderContextCaps{}

// NewRenderContextCaps creates capabilities configured by the given options, applied in order.
//
// Parameters:
//   - options: functional options to configure the capabilities
//
// Returns:
//   - *RenderContextCaps: the new capabilities
func NewRenderContextCaps(options ...CapsBuilderOption) *RenderContextCaps {
	c := &RenderContextCaps{
		adapter: gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *RenderContextCaps) MultiDrawIndirectEnabled() bool {
	return c.multiDrawIndirect.Load()
}

func (c *RenderContextCaps) GPUFrustumCullingEnabled() bool {
	return c.gpuFrustumCulling.Load()
}

// SetMultiDrawIndirect enables or disables indirect multi-draw at runtime.
func (c *RenderContextCaps) SetMultiDrawIndirect(enabled bool) {
	c.multiDrawIndirect.Store(enabled)
}

// SetGPUFrustumCulling enables or disables GPU-side frustum culling at runtime.
func (c *RenderContextCaps) SetGPUFrustumCulling(enabled bool) {
	c.gpuFrustumCulling.Store(enabled)
}

// Adapter returns the adapter description the capabilities were derived from.
func (c *RenderContextCaps) Adapter() gpucontext.AdapterInfo {
	return c.adapter
}

// GPUCullingActive reports whether caps select the GPU culling path: indirect
// multi-draw available and GPU frustum culling enabled. A nil caps value reports false.
//
// Parameters:
//   - caps: the capabilities to inspect
//
// Returns:
//   - bool: true if draw batches cull on the GPU
func GPUCullingActive(caps Capabilities) bool {
	if caps == nil {
		return false
	}
	return caps.MultiDrawIndirectEnabled() && caps.GPUFrustumCullingEnabled()
}
