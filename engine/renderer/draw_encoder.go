package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// DrawEncoder records draw commands for one render pass of one frame.
type DrawEncoder interface {
	// DrawCall encodes a single instanced indexed draw.
	//
	// Parameters:
	//   - pipelineKey: the registered render pipeline to use
	//   - mesh: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers whose bind groups are set at group indices 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline or mesh resources are missing
	DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// DrawCallIndirect encodes an indexed draw whose arguments are read from indirectBuffer,
	// letting a GPU culling pass decide the instance count without CPU readback.
	//
	// Parameters:
	//   - pipelineKey: the registered render pipeline to use
	//   - mesh: the provider holding vertex and index buffers
	//   - indirectBuffer: the buffer holding DrawIndexedIndirect arguments (20 bytes)
	//   - bindGroups: providers whose bind groups are set at group indices 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline or mesh resources are missing
	DrawCallIndirect(pipelineKey string, mesh bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error
}

// wgpuEncoder encodes draws into a wgpu render pass.
type wgpuEncoder struct {
	mu       *sync.Mutex
	pass     *wgpu.RenderPassEncoder
	registry *ResourceRegistry
}

var _ DrawEncoder = &wgpuEncoder{}

// NewWGPUEncoder wraps an open render pass. The caller owns the pass and must End it
// after the frame's render passes have drawn.
//
// Parameters:
//   - pass: the render pass encoder for this frame
//   - registry: the registry holding the pipelines referenced by draws
//
// Returns:
//   - DrawEncoder: the encoder
func NewWGPUEncoder(pass *wgpu.RenderPassEncoder, registry *ResourceRegistry) DrawEncoder {
	return &wgpuEncoder{
		mu:       &sync.Mutex{},
		pass:     pass,
		registry: registry,
	}
}

// bind sets the pipeline, bind groups and mesh buffers shared by both draw kinds.
func (e *wgpuEncoder) bind(pipelineKey string, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	renderPipeline, err := e.registry.Pipeline(pipelineKey)
	if err != nil {
		return fmt.Errorf("%w: %q", err, pipelineKey)
	}
	if renderPipeline == nil {
		return fmt.Errorf("renderer: pipeline %q has no GPU object", pipelineKey)
	}
	if mesh == nil || mesh.VertexBuffer() == nil || mesh.IndexBuffer() == nil {
		return errors.New("renderer: mesh has no vertex or index buffer")
	}

	e.pass.SetPipeline(renderPipeline)
	for i, bg := range bindGroups {
		e.pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	e.pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	e.pass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	return nil
}

func (e *wgpuEncoder) DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.bind(pipelineKey, mesh, bindGroups); err != nil {
		return err
	}
	e.pass.DrawIndexed(uint32(mesh.IndexCount()), instanceCount, 0, 0, 0)
	return nil
}

func (e *wgpuEncoder) DrawCallIndirect(pipelineKey string, mesh bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if indirectBuffer == nil {
		return errors.New("renderer: nil indirect buffer")
	}
	if err := e.bind(pipelineKey, mesh, bindGroups); err != nil {
		return err
	}
	e.pass.DrawIndexedIndirect(indirectBuffer, 0)
	return nil
}

// DrawCommand is one draw captured by a RecordingEncoder.
type DrawCommand struct {
	PipelineKey   string
	Mesh          string
	InstanceCount uint32
	Indirect      bool
	BindGroups    []string
}

// RecordingEncoder captures draws instead of submitting them. It backs headless runs
// and tests. When built with a registry it rejects unregistered pipeline keys the same
// way the wgpu encoder does.
type RecordingEncoder struct {
	mu       sync.Mutex
	registry *ResourceRegistry
	commands []DrawCommand
}

var _ DrawEncoder = &RecordingEncoder{}

// NewRecordingEncoder creates an empty recording encoder.
//
// Parameters:
//   - registry: the registry used to validate pipeline keys, may be nil
//
// Returns:
//   - *RecordingEncoder: the encoder
func NewRecordingEncoder(registry *ResourceRegistry) *RecordingEncoder {
	return &RecordingEncoder{registry: registry}
}

func (e *RecordingEncoder) record(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, indirect bool, bindGroups []bind_group_provider.BindGroupProvider) error {
	if e.registry != nil && !e.registry.HasPipeline(pipelineKey) {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	cmd := DrawCommand{
		PipelineKey:   pipelineKey,
		InstanceCount: instanceCount,
		Indirect:      indirect,
	}
	if mesh != nil {
		cmd.Mesh = mesh.Label()
	}
	for _, bg := range bindGroups {
		cmd.BindGroups = append(cmd.BindGroups, bg.Label())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, cmd)
	return nil
}

func (e *RecordingEncoder) DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	return e.record(pipelineKey, mesh, instanceCount, false, bindGroups)
}

func (e *RecordingEncoder) DrawCallIndirect(pipelineKey string, mesh bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error {
	return e.record(pipelineKey, mesh, 0, true, bindGroups)
}

// Commands returns a copy of the recorded draws in submission order.
func (e *RecordingEncoder) Commands() []DrawCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]DrawCommand, len(e.commands))
	copy(out, e.commands)
	return out
}

// Reset discards every recorded draw.
func (e *RecordingEncoder) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = e.commands[:0]
}
