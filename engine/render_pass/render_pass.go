// Package render_pass decides once per frame whether a pass's cached draw items are still
// valid, rebuilds or culls them as needed, and draws them bucket by bucket.
package render_pass

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/collection"
	"github.com/Carmen-Shannon/oxy-pass/engine/command_buffer"
	"github.com/Carmen-Shannon/oxy-pass/engine/debug"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/pass_state"
	"github.com/Carmen-Shannon/oxy-pass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pass/engine/render_index"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
)

// RenderPass draws one collection of a render index. Each frame it runs Prepare, which
// rebuilds its per-tag command buffers when the collection changed and resolves the
// culling mode, and then Draw.
//
// A RenderPass keeps its own command buffers; passes sharing a render index never share
// buckets. Calls are serialized internally, but a pass is meant to be driven by one
// frame loop.
type RenderPass interface {
	// Execute prepares the pass and draws the buckets selected by renderTags.
	// An empty renderTags draws every bucket.
	//
	// Parameters:
	//   - state: the frame's render pass state
	//   - renderTags: the tags to draw, in order; tags with no bucket are skipped
	Execute(state pass_state.PassState, renderTags []draw_item.RenderTag)

	// Prepare rebuilds or validates the command buffers and applies the frame's culling
	// mode. It leaves the pass Ready.
	//
	// Parameters:
	//   - state: the frame's render pass state
	Prepare(state pass_state.PassState)

	// Draw draws the buckets selected by renderTags with the state's encoder. Each bucket
	// prepares and executes its draws before the next bucket starts.
	//
	// Parameters:
	//   - state: the frame's render pass state
	//   - renderTags: the tags to draw, in order; an empty list draws every bucket in tag order
	Draw(state pass_state.PassState, renderTags []draw_item.RenderTag)

	// MarkCollectionDirty forces the next Prepare to rebuild every bucket regardless of
	// the collection version.
	MarkCollectionDirty()

	// Collection returns the collection the pass draws.
	Collection() collection.Collection

	// SetCollection changes the collection. The pass is marked dirty only if the
	// definition differs from the current one.
	//
	// Parameters:
	//   - c: the new collection
	SetCollection(c collection.Collection)

	// Phase returns where the pass is in its per-frame protocol.
	Phase() Phase

	// CullingMode returns the culling mode resolved by the last Prepare.
	CullingMode() CullingMode

	// TotalItemCount returns the number of draw items bucketed by the last rebuild.
	TotalItemCount() int

	// CulledItemCount returns the number of draw items that survived the last cull or
	// visibility sync, summed over every bucket.
	CulledItemCount() int

	// Bucket returns a snapshot of the bucket for tag. The bucket itself stays private
	// to the pass.
	//
	// Returns:
	//   - command_buffer.Stats: the bucket snapshot
	//   - bool: false if the collection has no items with tag
	Bucket(tag draw_item.RenderTag) (command_buffer.Stats, bool)

	// RenderTags returns the tags that currently have a bucket, sorted.
	RenderTags() []draw_item.RenderTag

	// Release stops the pass's cull workers, if any.
	Release()
}

type renderPass struct {
	mu *sync.Mutex

	index      render_index.RenderIndex
	collection collection.Collection

	caps        renderer.Capabilities
	toggles     *debug.Toggles
	counters    *profiler.Counters
	cullWorkers int
	cullPool    worker.DynamicWorkerPool

	commandBuffers map[draw_item.RenderTag]*command_buffer.CommandBuffer

	collectionVersion   int
	collectionChanged   bool
	lastCullingDisabled bool
	gpuCulling          bool

	phase          Phase
	cullingMode    CullingMode
	totalItemCount int
}

var _ RenderPass = &renderPass{}

// NewRenderPass creates a pass drawing c from index. Panics if index is nil.
//
// Parameters:
//   - index: the render index holding the scene
//   - c: the collection to draw
//   - options: functional options to configure the pass
//
// Returns:
//   - RenderPass: the new pass
func NewRenderPass(index render_index.RenderIndex, c collection.Collection, options ...RenderPassBuilderOption) RenderPass {
	if index == nil {
		panic("render_pass: NewRenderPass requires a non-nil RenderIndex")
	}
	rp := &renderPass{
		mu:             &sync.Mutex{},
		index:          index,
		collection:     c,
		cullWorkers:    1,
		commandBuffers: make(map[draw_item.RenderTag]*command_buffer.CommandBuffer),
	}
	for _, opt := range options {
		opt(rp)
	}

	// Queue size of 256 covers typical tag counts with headroom.
	if rp.cullWorkers > 1 {
		rp.cullPool = worker.NewDynamicWorkerPool(rp.cullWorkers, 256, 1*time.Second)
	}
	return rp
}

func (rp *renderPass) Execute(state pass_state.PassState, renderTags []draw_item.RenderTag) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.prepare(state)
	rp.draw(state, renderTags)
}

func (rp *renderPass) Prepare(state pass_state.PassState) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.prepare(state)
}

func (rp *renderPass) Draw(state pass_state.PassState, renderTags []draw_item.RenderTag) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.draw(state, renderTags)
}

func (rp *renderPass) MarkCollectionDirty() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.markCollectionDirty()
}

func (rp *renderPass) Collection() collection.Collection {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.collection
}

func (rp *renderPass) SetCollection(c collection.Collection) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.collection.Equal(c) {
		return
	}
	rp.collection = c
	rp.markCollectionDirty()
}

func (rp *renderPass) Phase() Phase {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.phase
}

func (rp *renderPass) CullingMode() CullingMode {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.cullingMode
}

func (rp *renderPass) TotalItemCount() int {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.totalItemCount
}

func (rp *renderPass) CulledItemCount() int {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.culledItemCount()
}

func (rp *renderPass) Bucket(tag draw_item.RenderTag) (command_buffer.Stats, bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	cb, ok := rp.commandBuffers[tag]
	if !ok {
		return command_buffer.Stats{}, false
	}
	return cb.Stats(), true
}

func (rp *renderPass) RenderTags() []draw_item.RenderTag {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return slices.Sorted(maps.Keys(rp.commandBuffers))
}

func (rp *renderPass) Release() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.cullPool != nil {
		rp.cullPool.Stop()
		rp.cullPool = nil
	}
}

// markCollectionDirty resets the cached version so the next prepare rebuilds.
// Caller must hold the mutex.
func (rp *renderPass) markCollectionDirty() {
	rp.collectionChanged = true
	rp.collectionVersion = 0
}

// prepare runs the collection change check and then the culling mode resolution; the
// latter depends on whether the collection changed. Caller must hold the mutex.
func (rp *renderPass) prepare(state pass_state.PassState) {
	rp.phase = PhasePreparing
	tracker := rp.index.ChangeTracker()
	bindingsVersion := tracker.ShaderBindingsVersion()

	changed := rp.refreshCommandBuffers(tracker.CollectionVersion(rp.collection.Name()), bindingsVersion)

	rp.gpuCulling = renderer.GPUCullingActive(rp.caps)
	mode, skip, _ := resolveCullingMode(cullingInputs{
		disableToggle:     rp.toggles.CullingDisabled(),
		freezeToggle:      rp.toggles.CullingFrozen(),
		gpuCulling:        rp.gpuCulling,
		collectionChanged: changed,
		lastSkip:          rp.lastCullingDisabled,
	})
	rp.lastCullingDisabled = skip
	rp.cullingMode = mode

	switch mode {
	case CullingModeSkip:
		visChangeCount := tracker.VisibilityChangeCount()
		for _, cb := range rp.commandBuffers {
			cb.SyncDrawItemVisibility(visChangeCount)
		}
	case CullingModeActive:
		if changed || rp.cameraChanged(state) || rp.extentsChanged() {
			rp.frustumCull(cullMatrixOf(state))
		}
	}
	profiler.Set(rp.counters, profiler.DrawItemsCulled, rp.culledItemCount())

	rp.phase = PhaseReady
}

// refreshCommandBuffers rebuilds every bucket when the collection changed and otherwise
// asks each bucket to validate its batches against bindingsVersion.
//
// Returns:
//   - bool: true if the collection changed
func (rp *renderPass) refreshCommandBuffers(collectionVersion, bindingsVersion int) bool {
	if !rp.collectionChanged && rp.collectionVersion == collectionVersion {
		for _, cb := range rp.commandBuffers {
			cb.RebuildDrawBatchesIfNeeded(bindingsVersion)
		}
		return false
	}

	debug.Logger().Debug("collection changed",
		"category", debug.CategoryCollectionChanged,
		"collection", rp.collection.Name(),
		"oldVersion", rp.collectionVersion,
		"newVersion", collectionVersion,
	)

	itemsByTag := rp.index.DrawItems(rp.collection)
	clear(rp.commandBuffers)
	total := 0
	for tag, items := range itemsByTag {
		cb := command_buffer.NewCommandBuffer(tag, command_buffer.WithCounters(rp.counters))
		cb.SwapDrawItems(&items, bindingsVersion)
		total += cb.TotalSize()
		rp.commandBuffers[tag] = cb
	}
	rp.totalItemCount = total

	profiler.Incr(rp.counters, profiler.CollectionsRefreshed)
	profiler.Set(rp.counters, profiler.TotalItemCount, total)

	rp.collectionVersion = collectionVersion
	rp.collectionChanged = false
	return true
}

// cameraChanged reports whether the view moved since the last cull. Camera motion is not
// tracked, so every non-frozen frame re-culls.
func (rp *renderPass) cameraChanged(pass_state.PassState) bool {
	return true
}

// extentsChanged reports whether any item bounds changed since the last cull. Bounds
// edits are not versioned, so this is always true.
func (rp *renderPass) extentsChanged() bool {
	return true
}

// frustumCull culls every bucket, fanning out over the cull pool when one is configured.
// It returns only once every bucket is culled.
func (rp *renderPass) frustumCull(cullMatrix common.Mat4) {
	if rp.cullPool == nil || len(rp.commandBuffers) < 2 {
		for _, cb := range rp.commandBuffers {
			cb.FrustumCull(cullMatrix)
		}
		return
	}

	// pool.Wait() blocks until workers exit, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	taskID := 0
	for _, cb := range rp.commandBuffers {
		wg.Add(1)
		cbCap := cb
		id := taskID
		taskID++
		rp.cullPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				cbCap.FrustumCull(cullMatrix)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// draw prepares and executes the selected buckets one at a time. Indirect submission is
// only used when the last Prepare resolved to GPU culling. Caller must hold the mutex.
func (rp *renderPass) draw(state pass_state.PassState, renderTags []draw_item.RenderTag) {
	rp.phase = PhaseDrawing
	registry := rp.index.ResourceRegistry()
	for _, cb := range rp.selectBuckets(renderTags) {
		cb.PrepareDraw(state, registry, rp.gpuCulling)
		cb.ExecuteDraw(state, registry)
	}
	rp.phase = PhaseIdle
}

// selectBuckets returns the buckets to draw: all of them in tag order when renderTags is
// empty, otherwise those named by renderTags in filter order. Absent and repeated tags
// are skipped.
func (rp *renderPass) selectBuckets(renderTags []draw_item.RenderTag) []*command_buffer.CommandBuffer {
	if len(renderTags) == 0 {
		out := make([]*command_buffer.CommandBuffer, 0, len(rp.commandBuffers))
		for _, tag := range slices.Sorted(maps.Keys(rp.commandBuffers)) {
			out = append(out, rp.commandBuffers[tag])
		}
		return out
	}

	out := make([]*command_buffer.CommandBuffer, 0, len(renderTags))
	seen := make(map[draw_item.RenderTag]struct{}, len(renderTags))
	for _, tag := range renderTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if cb, ok := rp.commandBuffers[tag]; ok {
			out = append(out, cb)
		}
	}
	return out
}

func (rp *renderPass) culledItemCount() int {
	n := 0
	for _, cb := range rp.commandBuffers {
		n += cb.CulledSize()
	}
	return n
}

func cullMatrixOf(state pass_state.PassState) common.Mat4 {
	if state == nil {
		return common.Identity()
	}
	return state.CullMatrix()
}
