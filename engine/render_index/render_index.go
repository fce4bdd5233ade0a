// Package render_index stores scene prims and hands their draw items to render passes.
package render_index

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/change_tracker"
	"github.com/Carmen-Shannon/oxy-pass/engine/collection"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

var (
	// ErrPrimExists is returned when inserting a prim at a path already in use.
	ErrPrimExists = errors.New("render_index: prim already exists")
	// ErrPrimNotFound is returned when editing a prim that was never inserted or was removed.
	ErrPrimNotFound = errors.New("render_index: prim not found")
)

// RenderIndex owns the scene's prims and versions every edit through its ChangeTracker.
// Render passes read from it; editing tools write to it. Thread-safe for concurrent access.
type RenderIndex interface {
	// InsertPrim adds a prim at path. Bounds passed through draw_item.WithBounds are
	// treated as local-space bounds under an identity transform.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - options: draw item options describing the prim
	//
	// Returns:
	//   - error: ErrPrimExists if path is taken
	InsertPrim(path string, options ...draw_item.DrawItemBuilderOption) error

	// RemovePrim removes the prim at path.
	//
	// Parameters:
	//   - path: the absolute prim path
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	RemovePrim(path string) error

	// SetVisibility changes the authored visibility of a prim.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - visible: the new visibility
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	SetVisibility(path string, visible bool) error

	// SetRenderTag moves a prim to another render tag. This is a structural edit.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - tag: the new render tag
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	SetRenderTag(path string, tag draw_item.RenderTag) error

	// SetBounds replaces a prim's local-space bounds.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - bounds: the new local bounds
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	SetBounds(path string, bounds common.AABB) error

	// SetTransform places a prim in the world. World bounds are recomputed from the
	// local bounds.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - position: the world translation
	//   - rotation: Euler angles in radians
	//   - scale: the per-axis scale
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	SetTransform(path string, position, rotation, scale [3]float32) error

	// MigrateResources swaps the mesh resources a prim draws from, for example after a
	// buffer was reallocated. Draw items keep their identity; only bindings change.
	//
	// Parameters:
	//   - path: the absolute prim path
	//   - mesh: the provider holding the new buffers
	//
	// Returns:
	//   - error: ErrPrimNotFound if there is no prim at path
	MigrateResources(path string, mesh bind_group_provider.BindGroupProvider) error

	// DrawItems returns the draw items of every prim in c, grouped by render tag and
	// ordered by prim path within each tag. Each call returns fresh slices.
	//
	// Parameters:
	//   - c: the collection to resolve
	//
	// Returns:
	//   - map[draw_item.RenderTag][]draw_item.DrawItem: the items by tag
	DrawItems(c collection.Collection) map[draw_item.RenderTag][]draw_item.DrawItem

	// PrimPaths returns every prim path, sorted.
	PrimPaths() []string

	// Count returns the number of prims.
	Count() int

	// ChangeTracker returns the tracker versioning this index.
	ChangeTracker() change_tracker.ChangeTracker

	// ResourceRegistry returns the GPU resource registry shared by passes drawing this index.
	ResourceRegistry() *renderer.ResourceRegistry
}

type prim struct {
	item        draw_item.DrawItem
	localBounds common.AABB
	transform   common.Mat4
}

type renderIndex struct {
	mu *sync.RWMutex

	prims    map[string]*prim
	tracker  change_tracker.ChangeTracker
	registry *renderer.ResourceRegistry
}

var _ RenderIndex = &renderIndex{}

// NewRenderIndex creates an empty render index with its own change tracker and
// resource registry unless options supply them.
//
// Parameters:
//   - options: functional options to configure the index
//
// Returns:
//   - RenderIndex: the new index
func NewRenderIndex(options ...RenderIndexBuilderOption) RenderIndex {
	ri := &renderIndex{
		mu:    &sync.RWMutex{},
		prims: make(map[string]*prim),
	}
	for _, opt := range options {
		opt(ri)
	}
	if ri.tracker == nil {
		ri.tracker = change_tracker.NewChangeTracker()
	}
	if ri.registry == nil {
		ri.registry = renderer.NewResourceRegistry()
	}
	return ri
}

func (ri *renderIndex) InsertPrim(path string, options ...draw_item.DrawItemBuilderOption) error {
	ri.mu.Lock()
	if _, ok := ri.prims[path]; ok {
		ri.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPrimExists, path)
	}
	item := draw_item.NewDrawItem(path, options...)
	ri.prims[path] = &prim{
		item:        item,
		localBounds: item.Bounds(),
		transform:   common.Identity(),
	}
	ri.mu.Unlock()

	ri.tracker.MarkAllCollectionsDirty()
	return nil
}

func (ri *renderIndex) RemovePrim(path string) error {
	ri.mu.Lock()
	if _, ok := ri.prims[path]; !ok {
		ri.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	delete(ri.prims, path)
	ri.mu.Unlock()

	ri.tracker.MarkAllCollectionsDirty()
	return nil
}

func (ri *renderIndex) SetVisibility(path string, visible bool) error {
	p, err := ri.lookup(path)
	if err != nil {
		return err
	}
	if p.item.Visible() == visible {
		return nil
	}
	p.item.SetVisible(visible)
	ri.tracker.MarkVisibilityDirty()
	return nil
}

func (ri *renderIndex) SetRenderTag(path string, tag draw_item.RenderTag) error {
	p, err := ri.lookup(path)
	if err != nil {
		return err
	}
	if p.item.RenderTag() == tag {
		return nil
	}
	p.item.SetRenderTag(tag)
	ri.tracker.MarkAllCollectionsDirty()
	return nil
}

// SetBounds does not bump any version: extent changes are picked up by the per-frame cull.
func (ri *renderIndex) SetBounds(path string, bounds common.AABB) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	p, ok := ri.prims[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	p.localBounds = bounds
	p.item.SetBounds(bounds.Transform(p.transform))
	return nil
}

func (ri *renderIndex) SetTransform(path string, position, rotation, scale [3]float32) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	p, ok := ri.prims[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	p.transform = common.ModelMatrix(position, rotation, scale)
	p.item.SetBounds(p.localBounds.Transform(p.transform))
	return nil
}

func (ri *renderIndex) MigrateResources(path string, mesh bind_group_provider.BindGroupProvider) error {
	p, err := ri.lookup(path)
	if err != nil {
		return err
	}
	p.item.SetMeshProvider(mesh)
	ri.tracker.MarkShaderBindingsDirty()
	return nil
}

func (ri *renderIndex) DrawItems(c collection.Collection) map[draw_item.RenderTag][]draw_item.DrawItem {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	out := make(map[draw_item.RenderTag][]draw_item.DrawItem)
	for _, path := range slices.Sorted(maps.Keys(ri.prims)) {
		if !c.Contains(path) {
			continue
		}
		item := ri.prims[path].item
		tag := item.RenderTag()
		out[tag] = append(out[tag], item)
	}
	return out
}

func (ri *renderIndex) PrimPaths() []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return slices.Sorted(maps.Keys(ri.prims))
}

func (ri *renderIndex) Count() int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return len(ri.prims)
}

func (ri *renderIndex) ChangeTracker() change_tracker.ChangeTracker {
	return ri.tracker
}

func (ri *renderIndex) ResourceRegistry() *renderer.ResourceRegistry {
	return ri.registry
}

func (ri *renderIndex) lookup(path string) (*prim, error) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	p, ok := ri.prims[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	return p, nil
}
