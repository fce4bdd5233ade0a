package renderer

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

func TestGPUCullingActive(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{"nil caps", nil, false},
		{"defaults", NewRenderContextCaps(), false},
		{"multi draw only", NewRenderContextCaps(WithMultiDrawIndirect(true)), false},
		{"gpu culling only", NewRenderContextCaps(WithGPUFrustumCulling(true)), false},
		{"both", NewRenderContextCaps(WithMultiDrawIndirect(true), WithGPUFrustumCulling(true)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GPUCullingActive(tt.caps); got != tt.want {
				t.Errorf("GPUCullingActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithAdapterInfo(t *testing.T) {
	tests := []struct {
		name          string
		info          gpucontext.AdapterInfo
		extra         []CapsBuilderOption
		wantMultiDraw bool
		wantGPUCull   bool
	}{
		{
			name:          "discrete",
			info:          gpucontext.AdapterInfo{Name: "dGPU", Type: gpucontext.AdapterTypeDiscrete},
			wantMultiDraw: true,
		},
		{
			name:          "integrated with gpu culling",
			info:          gpucontext.AdapterInfo{Name: "iGPU", Type: gpucontext.AdapterTypeIntegrated},
			extra:         []CapsBuilderOption{WithGPUFrustumCulling(true)},
			wantMultiDraw: true,
			wantGPUCull:   true,
		},
		{
			name: "software ignores earlier options",
			info: gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware},
		},
		{
			name:          "unknown leaves defaults",
			info:          gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown},
			extra:         []CapsBuilderOption{WithMultiDrawIndirect(true)},
			wantMultiDraw: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []CapsBuilderOption{WithGPUFrustumCulling(true), WithAdapterInfo(tt.info)}
			if tt.info.Type != gpucontext.AdapterTypeSoftware {
				opts = []CapsBuilderOption{WithAdapterInfo(tt.info)}
			}
			opts = append(opts, tt.extra...)
			caps := NewRenderContextCaps(opts...)

			if got := caps.MultiDrawIndirectEnabled(); got != tt.wantMultiDraw {
				t.Errorf("MultiDrawIndirectEnabled() = %v, want %v", got, tt.wantMultiDraw)
			}
			if got := caps.GPUFrustumCullingEnabled(); got != tt.wantGPUCull {
				t.Errorf("GPUFrustumCullingEnabled() = %v, want %v", got, tt.wantGPUCull)
			}
			if caps.Adapter().Name != tt.info.Name {
				t.Errorf("Adapter().Name = %q, want %q", caps.Adapter().Name, tt.info.Name)
			}
		})
	}
}

func TestRenderContextCapsSetters(t *testing.T) {
	caps := NewRenderContextCaps()
	caps.SetMultiDrawIndirect(true)
	caps.SetGPUFrustumCulling(true)
	if !GPUCullingActive(caps) {
		t.Fatal("expected GPU culling after enabling both flags")
	}
	caps.SetGPUFrustumCulling(false)
	if GPUCullingActive(caps) {
		t.Fatal("expected CPU culling after disabling GPU culling")
	}
}
