package renderer

import "github.com/cogentcore/webgpu/wgpu"

// PipelineDescriptor describes a render pipeline built from a single WGSL module holding
// both entry points. Draw items reference the pipeline by Key.
type PipelineDescriptor struct {
	Key                string
	ShaderSource       string
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexLayouts      []wgpu.VertexBufferLayout
	BindGroupLayouts   []*wgpu.BindGroupLayout
	Topology           wgpu.PrimitiveTopology
	CullMode           wgpu.CullMode
	DepthWrite         bool
}

// entryPoints returns the vertex and fragment entry points, defaulting to vs_main and fs_main.
func (d PipelineDescriptor) entryPoints() (string, string) {
	vs, fs := d.VertexEntryPoint, d.FragmentEntryPoint
	if vs == "" {
		vs = "vs_main"
	}
	if fs == "" {
		fs = "fs_main"
	}
	return vs, fs
}
