package renderer

import "github.com/gogpu/gpucontext"

// CapsBuilderOption is a functional option for configuring RenderContextCaps.
type CapsBuilderOption func(c *RenderContextCaps)

// WithMultiDrawIndirect sets whether indirect multi-draw is available.
//
// Parameters:
//   - enabled: true if the device supports indirect multi-draw
//
// Returns:
//   - CapsBuilderOption: option function to apply
func WithMultiDrawIndirect(enabled bool) CapsBuilderOption {
	return func(c *RenderContextCaps) {
		c.multiDrawIndirect.Store(enabled)
	}
}

// WithGPUFrustumCulling sets whether draw batches cull on the GPU.
//
// Parameters:
//   - enabled: true to cull with compute shaders and indirect draws
//
// Returns:
//   - CapsBuilderOption: option function to apply
func WithGPUFrustumCulling(enabled bool) CapsBuilderOption {
	return func(c *RenderContextCaps) {
		c.gpuFrustumCulling.Store(enabled)
	}
}

// WithAdapterInfo derives defaults from the physical adapter. Hardware adapters
// (discrete or integrated) get indirect multi-draw; software adapters get neither
// indirect multi-draw nor GPU culling, since both would run on the CPU anyway.
// Options applied afterwards override these defaults.
//
// Parameters:
//   - info: the adapter description reported by the host application
//
// Returns:
//   - CapsBuilderOption: option function to apply
func WithAdapterInfo(info gpucontext.AdapterInfo) CapsBuilderOption {
	return func(c *RenderContextCaps) {
		c.adapter = info
		switch info.Type {
		case gpucontext.AdapterTypeDiscrete, gpucontext.AdapterTypeIntegrated:
			c.multiDrawIndirect.Store(true)
		case gpucontext.AdapterTypeSoftware:
			c.multiDrawIndirect.Store(false)
			c.gpuFrustumCulling.Store(false)
		}
	}
}
