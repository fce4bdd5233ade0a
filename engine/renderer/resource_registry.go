package renderer

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPipelineNotFound is returned when a draw references a pipeline key that was never registered.
var ErrPipelineNotFound = errors.New("renderer: pipeline not found")

// BatchKey names the draw batch that draws mesh with pipeline. GPU culling writes one
// indirect args buffer per batch key.
//
// Parameters:
//   - pipelineKey: the pipeline key
//   - meshLabel: the mesh provider label
//
// Returns:
//   - string: the batch key
func BatchKey(pipelineKey, meshLabel string) string {
	return pipelineKey + "|" + meshLabel
}

// ResourceRegistry is the GPU resource cache shared by every render pass drawing into
// the same device: render pipelines keyed by name, the indirect-args buffers written by
// GPU culling, and bind groups bound for every draw (camera, lights).
//
// Render passes treat it as read-mostly. All methods are safe for concurrent use.
type ResourceRegistry struct {
	mu *sync.RWMutex

	pipelines  map[string]*wgpu.RenderPipeline
	indirect   map[string]*wgpu.Buffer
	bindGroups []bind_group_provider.BindGroupProvider
}

// NewResourceRegistry creates an empty registry.
//
// Returns:
//   - *ResourceRegistry: the new registry
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{
		mu:        &sync.RWMutex{},
		pipelines: make(map[string]*wgpu.RenderPipeline),
		indirect:  make(map[string]*wgpu.Buffer),
	}
}

// RegisterPipeline caches a render pipeline under key, replacing any previous entry.
// A nil pipeline registers the key without a GPU object, which is enough for encoders
// that never touch the GPU.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the created render pipeline, or nil
func (r *ResourceRegistry) RegisterPipeline(key string, p *wgpu.RenderPipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[key] = p
}

// Pipeline retrieves the pipeline registered under key.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - *wgpu.RenderPipeline: the pipeline, or nil
//   - error: ErrPipelineNotFound if key was never registered
func (r *ResourceRegistry) Pipeline(key string) (*wgpu.RenderPipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[key]
	if !ok {
		return nil, ErrPipelineNotFound
	}
	return p, nil
}

// HasPipeline reports whether key was registered.
func (r *ResourceRegistry) HasPipeline(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pipelines[key]
	return ok
}

// PipelineKeys returns every registered pipeline key, sorted.
func (r *ResourceRegistry) PipelineKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.pipelines))
}

// SetIndirectBuffer stores the DrawIndexedIndirect args buffer written by GPU culling
// for a draw batch (see BatchKey). Passing nil removes it.
//
// Parameters:
//   - key: the batch key
//   - buf: the indirect args buffer (20 bytes per draw), or nil
func (r *ResourceRegistry) SetIndirectBuffer(key string, buf *wgpu.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf == nil {
		delete(r.indirect, key)
		return
	}
	r.indirect[key] = buf
}

// IndirectBuffer returns the indirect args buffer for the batch key, or nil.
func (r *ResourceRegistry) IndirectBuffer(key string) *wgpu.Buffer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indirect[key]
}

// SetBindGroups replaces the shared bind groups bound, in order, ahead of every draw.
//
// Parameters:
//   - providers: the shared bind group providers
func (r *ResourceRegistry) SetBindGroups(providers ...bind_group_provider.BindGroupProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindGroups = slices.Clone(providers)
}

// BindGroups returns a copy of the shared bind groups.
func (r *ResourceRegistry) BindGroups() []bind_group_provider.BindGroupProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.bindGroups)
}
