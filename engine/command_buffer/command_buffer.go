// Package command_buffer implements the per-render-tag bucket of draw items a render
// pass culls and draws.
//
// A CommandBuffer owns its items once they are swapped in. It groups consecutive items
// that share a pipeline and mesh into draw batches, tracks which items survived the last
// cull or visibility sync, and turns the survivors into draw commands.
package command_buffer

import (
	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/pass_state"
	"github.com/Carmen-Shannon/oxy-pass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// drawBatch is a run of consecutive items drawn with one pipeline and one mesh.
type drawBatch struct {
	pipelineKey string
	mesh        bind_group_provider.BindGroupProvider
	items       []int
}

// drawCommand is one prepared submission. A non-nil indirect buffer replaces instanceCount.
type drawCommand struct {
	pipelineKey   string
	mesh          bind_group_provider.BindGroupProvider
	instanceCount uint32
	indirect      *wgpu.Buffer
}

// CommandBuffer is the bucket of draw items for one render tag.
// It is not safe for concurrent use; a render pass owns each buffer exclusively.
type CommandBuffer struct {
	tag      draw_item.RenderTag
	counters *profiler.Counters

	items   []draw_item.DrawItem
	visible []bool
	batches []drawBatch

	bindingsVersion int
	visChangeCount  int
	visSynced       bool
	culledSize      int

	drawList []drawCommand
}

// NewCommandBuffer creates an empty buffer for tag.
//
// Parameters:
//   - tag: the render tag the buffer holds
//   - options: functional options to configure the buffer
//
// Returns:
//   - *CommandBuffer: the new buffer
func NewCommandBuffer(tag draw_item.RenderTag, options ...CommandBufferBuilderOption) *CommandBuffer {
	cb := &CommandBuffer{tag: tag}
	for _, opt := range options {
		opt(cb)
	}
	return cb
}

// Tag returns the render tag of the buffer.
func (cb *CommandBuffer) Tag() draw_item.RenderTag {
	return cb.tag
}

// SwapDrawItems exchanges the buffer's items with *items. The caller's slice receives the
// previous contents. Culling state resets to authored visibility and batches are rebuilt
// for bindingsVersion.
//
// Parameters:
//   - items: the new items; receives the old ones
//   - bindingsVersion: the shader bindings version the items were fetched at
func (cb *CommandBuffer) SwapDrawItems(items *[]draw_item.DrawItem, bindingsVersion int) {
	cb.items, *items = *items, cb.items

	cb.visible = make([]bool, len(cb.items))
	cb.culledSize = 0
	for i, item := range cb.items {
		cb.visible[i] = item.Visible()
		if cb.visible[i] {
			cb.culledSize++
		}
	}
	cb.visSynced = false
	cb.drawList = cb.drawList[:0]
	cb.rebuildBatches(bindingsVersion)
}

// RebuildDrawBatchesIfNeeded re-encodes batches when bindingsVersion differs from the
// version they were built at. Item membership and culling results are untouched.
//
// Parameters:
//   - bindingsVersion: the current shader bindings version
//
// Returns:
//   - bool: true if the batches were rebuilt
func (cb *CommandBuffer) RebuildDrawBatchesIfNeeded(bindingsVersion int) bool {
	if bindingsVersion == cb.bindingsVersion {
		return false
	}
	cb.rebuildBatches(bindingsVersion)
	profiler.Incr(cb.counters, profiler.DrawBatchesRebuilt)
	debug.Logger().Debug("draw batches rebuilt",
		"category", debug.CategoryBatchesRebuilt,
		"tag", cb.tag,
		"batches", len(cb.batches),
		"bindingsVersion", bindingsVersion,
	)
	return true
}

// rebuildBatches groups consecutive items that share a pipeline key and mesh provider.
func (cb *CommandBuffer) rebuildBatches(bindingsVersion int) {
	cb.batches = cb.batches[:0]
	for i, item := range cb.items {
		key, mesh := item.PipelineKey(), item.MeshProvider()
		if n := len(cb.batches); n > 0 && cb.batches[n-1].pipelineKey == key && cb.batches[n-1].mesh == mesh {
			cb.batches[n-1].items = append(cb.batches[n-1].items, i)
			continue
		}
		cb.batches = append(cb.batches, drawBatch{pipelineKey: key, mesh: mesh, items: []int{i}})
	}
	cb.bindingsVersion = bindingsVersion
}

// FrustumCull marks each item visible if it is authored visible and its bounds intersect
// the view volume of cullMatrix. The next SyncDrawItemVisibility always runs afterwards.
//
// Parameters:
//   - cullMatrix: the column-major view-projection matrix
func (cb *CommandBuffer) FrustumCull(cullMatrix common.Mat4) {
	cb.culledSize = 0
	frustum := common.ExtractFrustum(cullMatrix)
	for i, item := range cb.items {
		cb.visible[i] = item.Visible() && item.IntersectsFrustum(frustum)
		if cb.visible[i] {
			cb.culledSize++
		}
	}
	cb.visSynced = false
	debug.Logger().Debug("draw items culled",
		"category", debug.CategoryDrawItemsCulled,
		"tag", cb.tag,
		"total", len(cb.items),
		"culled", cb.culledSize,
	)
}

// SyncDrawItemVisibility resets every item to its authored visibility, without a frustum
// test. It is a no-op when visChangeCount matches the last sync and no cull ran since.
//
// Parameters:
//   - visChangeCount: the current visibility change counter
func (cb *CommandBuffer) SyncDrawItemVisibility(visChangeCount int) {
	if cb.visSynced && visChangeCount == cb.visChangeCount {
		return
	}
	cb.culledSize = 0
	for i, item := range cb.items {
		cb.visible[i] = item.Visible()
		if cb.visible[i] {
			cb.culledSize++
		}
	}
	cb.visChangeCount = visChangeCount
	cb.visSynced = true
	debug.Logger().Debug("draw items culled",
		"category", debug.CategoryDrawItemsCulled,
		"tag", cb.tag,
		"total", len(cb.items),
		"culled", cb.culledSize,
		"skipped", true,
	)
}

// PrepareDraw compacts the visible items of each batch into this frame's draw list.
// Batches with nothing visible are dropped. With gpuCulling set, a batch is drawn
// indirectly when state requests it and registry holds an indirect buffer for the batch,
// and the GPU writes its instance count. Otherwise it draws the summed instance count of
// its visible items.
//
// Parameters:
//   - state: the frame's render pass state
//   - registry: the shared GPU resource registry
//   - gpuCulling: true when the pass resolved to GPU culling this frame
func (cb *CommandBuffer) PrepareDraw(state pass_state.PassState, registry *renderer.ResourceRegistry, gpuCulling bool) {
	cb.drawList = cb.drawList[:0]
	indirect := gpuCulling && state != nil && state.IndirectDraw() && registry != nil

	for b := range cb.batches {
		batch := &cb.batches[b]

		var instances uint32
		for _, i := range batch.items {
			if cb.visible[i] {
				instances += uint32(cb.items[i].InstanceCount())
			}
		}
		if instances == 0 {
			continue
		}

		if indirect {
			if buf := registry.IndirectBuffer(renderer.BatchKey(batch.pipelineKey, meshLabel(batch.mesh))); buf != nil {
				cb.drawList = append(cb.drawList, drawCommand{pipelineKey: batch.pipelineKey, mesh: batch.mesh, indirect: buf})
				continue
			}
		}
		cb.drawList = append(cb.drawList, drawCommand{pipelineKey: batch.pipelineKey, mesh: batch.mesh, instanceCount: instances})
	}
}

// ExecuteDraw submits the prepared draw list through the state's encoder in batch order.
// Shared bind groups from registry are bound before the state's own. A failed draw is
// logged and skipped.
//
// Parameters:
//   - state: the frame's render pass state
//   - registry: the shared GPU resource registry
func (cb *CommandBuffer) ExecuteDraw(state pass_state.PassState, registry *renderer.ResourceRegistry) {
	if len(cb.drawList) == 0 {
		return
	}
	if state == nil || state.Encoder() == nil {
		debug.Logger().Warn("draw skipped: no encoder", "tag", cb.tag, "commands", len(cb.drawList))
		return
	}
	enc := state.Encoder()

	var bindGroups []bind_group_provider.BindGroupProvider
	if registry != nil {
		bindGroups = registry.BindGroups()
	}
	bindGroups = append(bindGroups, state.BindGroups()...)

	for _, cmd := range cb.drawList {
		var err error
		if cmd.indirect != nil {
			err = enc.DrawCallIndirect(cmd.pipelineKey, cmd.mesh, cmd.indirect, bindGroups)
		} else {
			err = enc.DrawCall(cmd.pipelineKey, cmd.mesh, cmd.instanceCount, bindGroups)
		}
		if err != nil {
			debug.Logger().Warn("draw failed",
				"tag", cb.tag,
				"pipeline", cmd.pipelineKey,
				"mesh", meshLabel(cmd.mesh),
				"error", err,
			)
			continue
		}
		profiler.Incr(cb.counters, profiler.DrawCalls)
	}
}

// Stats is a snapshot of a CommandBuffer, safe to hand out of the pass that owns it.
type Stats struct {
	Tag             draw_item.RenderTag
	TotalSize       int
	CulledSize      int
	BatchCount      int
	BindingsVersion int
	PreparedDraws   int
	PrimPaths       []string // in draw order
	VisiblePaths    []string // survivors of the last cull or visibility sync
}

// Stats returns a snapshot of the buffer.
func (cb *CommandBuffer) Stats() Stats {
	st := Stats{
		Tag:             cb.tag,
		TotalSize:       len(cb.items),
		CulledSize:      cb.culledSize,
		BatchCount:      len(cb.batches),
		BindingsVersion: cb.bindingsVersion,
		PreparedDraws:   len(cb.drawList),
		PrimPaths:       make([]string, 0, len(cb.items)),
		VisiblePaths:    make([]string, 0, cb.culledSize),
	}
	for i, item := range cb.items {
		st.PrimPaths = append(st.PrimPaths, item.PrimPath())
		if cb.visible[i] {
			st.VisiblePaths = append(st.VisiblePaths, item.PrimPath())
		}
	}
	return st
}

// TotalSize returns the number of draw items in the buffer.
func (cb *CommandBuffer) TotalSize() int {
	return len(cb.items)
}

// CulledSize returns the number of draw items that survived the last cull or visibility sync.
func (cb *CommandBuffer) CulledSize() int {
	return cb.culledSize
}

// BatchCount returns the number of draw batches.
func (cb *CommandBuffer) BatchCount() int {
	return len(cb.batches)
}

// BindingsVersion returns the shader bindings version the batches were built at.
func (cb *CommandBuffer) BindingsVersion() int {
	return cb.bindingsVersion
}

// PreparedDraws returns the number of draw commands prepared for this frame.
func (cb *CommandBuffer) PreparedDraws() int {
	return len(cb.drawList)
}

// DrawItems returns a copy of the buffer's items.
func (cb *CommandBuffer) DrawItems() []draw_item.DrawItem {
	out := make([]draw_item.DrawItem, len(cb.items))
	copy(out, cb.items)
	return out
}

// VisibleDrawItems returns the items that survived the last cull or visibility sync.
func (cb *CommandBuffer) VisibleDrawItems() []draw_item.DrawItem {
	out := make([]draw_item.DrawItem, 0, cb.culledSize)
	for i, item := range cb.items {
		if cb.visible[i] {
			out = append(out, item)
		}
	}
	return out
}

func meshLabel(mesh bind_group_provider.BindGroupProvider) string {
	if mesh == nil {
		return ""
	}
	return mesh.Label()
}
