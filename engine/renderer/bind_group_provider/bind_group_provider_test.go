package bind_group_provider

import "testing"

func TestNewBindGroupProviderWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("cube mesh", WithIndexCount(36))

	if p.Label() != "cube mesh" {
		t.Errorf("Label() = %q, want %q", p.Label(), "cube mesh")
	}
	if p.IndexCount() != 36 {
		t.Errorf("IndexCount() = %d, want 36", p.IndexCount())
	}
	if p.VertexBuffer() != nil || p.IndexBuffer() != nil || p.BindGroup() != nil || p.Buffer(0) != nil {
		t.Error("provider without GPU resources returned a non-nil resource")
	}

	// Releasing a provider with nothing allocated must be safe.
	p.Release()
	if p.IndexCount() != 0 {
		t.Errorf("IndexCount() after Release = %d, want 0", p.IndexCount())
	}
}
