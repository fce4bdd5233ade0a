package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-pass/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gpucontext"
)

// renderer implements the Renderer interface.
// It owns the GPU device and registers everything it creates in a ResourceRegistry that
// render passes read from.
type renderer struct {
	mu *sync.Mutex

	registry *ResourceRegistry
	caps     *RenderContextCaps

	backendType RendererBackendType
	backend     RendererBackend

	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	msaa                 MSAASampleCount
	clearColor           wgpu.Color
}

// Renderer owns the GPU device and surface of a window. It creates the pipelines, mesh
// buffers and indirect argument buffers draw items reference, and brackets each frame
// with BeginFrame/EndFrame. Render passes draw through the encoder BeginFrame returns.
type Renderer interface {
	// Registry returns the resource registry populated by this renderer.
	Registry() *ResourceRegistry

	// Caps returns the capabilities passes should consult for this device.
	Caps() *RenderContextCaps

	// Resize reconfigures the surface after a window resize.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode; it applies on the next Resize.
	SetPresentMode(mode PresentMode)

	// RegisterPipeline creates a render pipeline and registers it under desc.Key.
	//
	// Parameters:
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - error: non-nil if pipeline creation failed
	RegisterPipeline(desc PipelineDescriptor) error

	// InitMeshBuffers uploads vertex and index data into GPU buffers owned by provider.
	//
	// Parameters:
	//   - provider: the mesh provider receiving the buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: non-nil if buffer creation failed
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitUniformBindGroup gives provider a uniform buffer and bind group of size bytes.
	//
	// Parameters:
	//   - provider: the provider receiving the buffer and bind group
	//   - size: the uniform size in bytes
	//   - visibility: the shader stages that read the uniform
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout to reference from pipeline descriptors
	//   - error: non-nil if creation failed
	InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, size uint64, visibility wgpu.ShaderStage) (*wgpu.BindGroupLayout, error)

	// RegisterIndirectBuffer creates the indirect argument buffer for the batch that
	// draws mesh with pipelineKey and registers it under BatchKey.
	//
	// Parameters:
	//   - pipelineKey: the pipeline the batch draws with
	//   - mesh: the mesh the batch draws
	//   - instanceCount: the seeded instance count
	//
	// Returns:
	//   - error: non-nil if buffer creation failed
	RegisterIndirectBuffer(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32) error

	// WriteUniform writes data to binding 0 of provider.
	WriteUniform(provider bind_group_provider.BindGroupProvider, data []byte)

	// BeginFrame acquires the next surface image and opens the frame's render pass.
	//
	// Returns:
	//   - DrawEncoder: the encoder render passes draw through this frame
	//   - error: non-nil if the surface image could not be acquired
	BeginFrame() (DrawEncoder, error)

	// EndFrame submits the frame's commands and presents it.
	EndFrame()

	// Release frees every GPU object owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to w.
//
// Parameters:
//   - backendType: the GPU backend
//   - w: an open window
//   - options: functional options for renderer configuration
//
// Returns:
//   - Renderer: the new renderer
//   - error: non-nil if no adapter or device could be acquired
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		registry:    NewResourceRegistry(),
		backendType: backendType,
		msaa:        MSAA4x,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}

	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.clearColor)
	}
	if err != nil {
		return nil, err
	}

	r.adoptAdapter(r.backend.AdapterInfo())

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if err := r.backend.ConfigureSurface(w.Width(), w.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("configure surface: %w", err)
	}
	return r, nil
}

// adoptAdapter derives caps from the adapter unless WithRenderCaps supplied them,
// and logs the adapter once.
func (r *renderer) adoptAdapter(info gpucontext.AdapterInfo) {
	if r.caps == nil {
		r.caps = NewRenderContextCaps(WithAdapterInfo(info))
	}
	debug.Logger().Info("renderer adapter",
		"name", info.Name,
		"type", info.Type.String(),
		"multiDrawIndirect", r.caps.MultiDrawIndirectEnabled(),
		"gpuCulling", GPUCullingActive(r.caps),
	)
}

func (r *renderer) Registry() *ResourceRegistry {
	return r.registry
}

func (r *renderer) Caps() *RenderContextCaps {
	return r.caps
}

func (r *renderer) Resize(width, height int) {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		debug.Logger().Error("surface resize failed", "width", width, "height", height, "error", err)
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) RegisterPipeline(desc PipelineDescriptor) error {
	if desc.Key == "" {
		return fmt.Errorf("render pipeline requires a key")
	}
	created, err := r.backend.CreateRenderPipeline(desc)
	if err != nil {
		return fmt.Errorf("create render pipeline %q: %w", desc.Key, err)
	}
	r.registry.RegisterPipeline(desc.Key, created)
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, size uint64, visibility wgpu.ShaderStage) (*wgpu.BindGroupLayout, error) {
	return r.backend.InitUniformBindGroup(provider, size, visibility)
}

func (r *renderer) RegisterIndirectBuffer(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32) error {
	key := BatchKey(pipelineKey, mesh.Label())
	buf, err := r.backend.CreateIndirectBuffer(key, GPUIndirectArgs{
		IndexCount:    uint32(mesh.IndexCount()),
		InstanceCount: instanceCount,
	})
	if err != nil {
		return fmt.Errorf("create indirect buffer %q: %w", key, err)
	}
	r.registry.SetIndirectBuffer(key, buf)
	return nil
}

func (r *renderer) WriteUniform(provider bind_group_provider.BindGroupProvider, data []byte) {
	r.backend.WriteBuffer(provider.Buffer(0), 0, data)
}

func (r *renderer) BeginFrame() (DrawEncoder, error) {
	pass, err := r.backend.BeginFrame()
	if err != nil {
		return nil, err
	}
	return NewWGPUEncoder(pass, r.registry), nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
