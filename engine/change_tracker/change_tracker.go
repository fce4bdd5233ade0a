// Package change_tracker versions scene edits so render passes can tell when their
// cached draw items are stale.
//
// Every counter starts at 1 and only increases. A render pass whose cached version is
// 0 therefore always sees a change on its next prepare.
package change_tracker

import "sync"

// ChangeTracker reports the versions a render pass compares against its cache.
type ChangeTracker interface {
	// CollectionVersion returns the structural version of the named collection.
	CollectionVersion(name string) int

	// ShaderBindingsVersion returns the version of GPU resource bindings. It changes when
	// prim resources migrate without a structural edit.
	ShaderBindingsVersion() int

	// VisibilityChangeCount returns a counter bumped whenever any prim's authored
	// visibility changes.
	VisibilityChangeCount() int

	// MarkCollectionDirty bumps the version of one collection.
	MarkCollectionDirty(name string)

	// MarkAllCollectionsDirty bumps the version seen by every collection.
	MarkAllCollectionsDirty()

	// MarkShaderBindingsDirty bumps the shader bindings version.
	MarkShaderBindingsDirty()

	// MarkVisibilityDirty bumps the visibility change counter.
	MarkVisibilityDirty()
}

type changeTracker struct {
	mu *sync.RWMutex

	indexVersion      int
	collectionVersion map[string]int
	bindingsVersion   int
	visibilityCount   int
}

var _ ChangeTracker = &changeTracker{}

// NewChangeTracker creates an in-memory tracker safe for concurrent use.
//
// Returns:
//   - ChangeTracker: the tracker
func NewChangeTracker() ChangeTracker {
	return &changeTracker{
		mu:                &sync.RWMutex{},
		indexVersion:      1,
		collectionVersion: make(map[string]int),
		bindingsVersion:   1,
		visibilityCount:   1,
	}
}

// CollectionVersion combines the index-wide version with the per-name version. Both only
// grow, so the sum is monotonic as well.
func (t *changeTracker) CollectionVersion(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.collectionVersion[name]
	if !ok {
		v = 1
	}
	return t.indexVersion + v
}

func (t *changeTracker) ShaderBindingsVersion() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bindingsVersion
}

func (t *changeTracker) VisibilityChangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visibilityCount
}

func (t *changeTracker) MarkCollectionDirty(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.collectionVersion[name]
	if !ok {
		v = 1
	}
	t.collectionVersion[name] = v + 1
}

func (t *changeTracker) MarkAllCollectionsDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexVersion++
}

func (t *changeTracker) MarkShaderBindingsDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindingsVersion++
}

func (t *changeTracker) MarkVisibilityDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visibilityCount++
}
