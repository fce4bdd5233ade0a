// Package draw_item defines the renderable representation of one scene prim as seen by
// render passes.
package draw_item

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

type drawItem struct {
	mu *sync.RWMutex

	primPath      string
	renderTag     RenderTag
	bounds        common.AABB
	visible       bool
	pipelineKey   string
	meshProvider  bind_group_provider.BindGroupProvider
	instanceCount int
}

// DrawItem is a reference to one prim's renderable representation. Render passes read
// it; only the owning scene storage mutates it through the Set* methods.
type DrawItem interface {
	// PrimPath returns the scene path of the prim this item draws.
	PrimPath() string

	// RenderTag returns the tag used to bucket this item.
	RenderTag() RenderTag

	// Bounds returns the world-space bounding box of the item.
	Bounds() common.AABB

	// Visible returns the authored visibility of the prim.
	Visible() bool

	// PipelineKey returns the key of the render pipeline that draws this item.
	PipelineKey() string

	// MeshProvider returns the provider holding the item's vertex and index buffers.
	// It is replaced when the prim's resources migrate.
	MeshProvider() bind_group_provider.BindGroupProvider

	// InstanceCount returns how many instances of the mesh this item draws.
	InstanceCount() int

	// IntersectsViewVolume reports whether the item's bounds intersect the frustum
	// described by cullMatrix. Items with empty bounds are always considered inside,
	// since their extent is unknown.
	//
	// Parameters:
	//   - cullMatrix: the column-major view-projection matrix to cull against
	//
	// Returns:
	//   - bool: true if the item may be visible
	IntersectsViewVolume(cullMatrix common.Mat4) bool

	// IntersectsFrustum is IntersectsViewVolume against planes already extracted with
	// common.ExtractFrustum, so one extraction can serve many items.
	IntersectsFrustum(f common.Frustum) bool

	// SetRenderTag changes the item's tag.
	SetRenderTag(tag RenderTag)

	// SetBounds changes the item's world-space bounds.
	SetBounds(bounds common.AABB)

	// SetVisible changes the item's authored visibility.
	SetVisible(visible bool)

	// SetPipelineKey changes the pipeline used to draw the item.
	SetPipelineKey(key string)

	// SetMeshProvider replaces the item's mesh resources.
	SetMeshProvider(p bind_group_provider.BindGroupProvider)

	// SetInstanceCount changes the number of instances drawn.
	SetInstanceCount(n int)
}

var _ DrawItem = &drawItem{}

// NewDrawItem creates a visible DrawItem for the prim at path, drawing one instance
// with empty bounds.
//
// Parameters:
//   - primPath: the scene path of the prim
//   - options: functional options to further configure the item
//
// Returns:
//   - DrawItem: the new draw item
func NewDrawItem(primPath string, options ...DrawItemBuilderOption) DrawItem {
	d := &drawItem{
		mu:            &sync.RWMutex{},
		primPath:      primPath,
		renderTag:     TagGeometry,
		bounds:        common.EmptyAABB(),
		visible:       true,
		instanceCount: 1,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *drawItem) PrimPath() string {
	return d.primPath
}

func (d *drawItem) RenderTag() RenderTag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.renderTag
}

func (d *drawItem) Bounds() common.AABB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bounds
}

func (d *drawItem) Visible() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible
}

func (d *drawItem) PipelineKey() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pipelineKey
}

func (d *drawItem) MeshProvider() bind_group_provider.BindGroupProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.meshProvider
}

func (d *drawItem) InstanceCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.instanceCount
}

func (d *drawItem) IntersectsViewVolume(cullMatrix common.Mat4) bool {
	return d.IntersectsFrustum(common.ExtractFrustum(cullMatrix))
}

func (d *drawItem) IntersectsFrustum(f common.Frustum) bool {
	b := d.Bounds()
	if b.Empty() {
		return true
	}
	return f.IntersectsAABB(b)
}

func (d *drawItem) SetRenderTag(tag RenderTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderTag = tag
}

func (d *drawItem) SetBounds(bounds common.AABB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bounds = bounds
}

func (d *drawItem) SetVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = visible
}

func (d *drawItem) SetPipelineKey(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pipelineKey = key
}

func (d *drawItem) SetMeshProvider(p bind_group_provider.BindGroupProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meshProvider = p
}

func (d *drawItem) SetInstanceCount(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instanceCount = max(n, 0)
}
