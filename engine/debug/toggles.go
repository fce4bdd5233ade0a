// Package debug holds the externally settable debug switches polled by render passes
// each frame, and the logger shared by the engine packages.
package debug

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-pass/common"
)

// Toggles are debug switches read once per Prepare. They may be flipped from any
// goroutine (an input callback, a console) while frames are being prepared.
type Toggles struct {
	// DisableFrustumCulling turns off all CPU frustum culling; every draw item is
	// treated as inside the view volume.
	DisableFrustumCulling atomic.Bool
	// FreezeCullFrustum keeps the previous frame's culling result instead of
	// re-culling against the new cull matrix.
	FreezeCullFrustum atomic.Bool

	onRefresh atomic.Pointer[func()]
}

// NewToggles creates a Toggles value with every switch off.
//
// Returns:
//   - *Toggles: the new toggles
func NewToggles() *Toggles {
	return &Toggles{}
}

// CullingDisabled reports whether DisableFrustumCulling is set. A nil receiver reports false.
func (t *Toggles) CullingDisabled() bool {
	return t != nil && t.DisableFrustumCulling.Load()
}

// CullingFrozen reports whether FreezeCullFrustum is set. A nil receiver reports false.
func (t *Toggles) CullingFrozen() bool {
	return t != nil && t.FreezeCullFrustum.Load()
}

// OnRefresh registers the function run when the refresh key is pressed,
// typically a RenderPass's MarkCollectionDirty.
//
// Parameters:
//   - fn: the callback, or nil to clear it
func (t *Toggles) OnRefresh(fn func()) {
	if fn == nil {
		t.onRefresh.Store(nil)
		return
	}
	t.onRefresh.Store(&fn)
}

// HandleKey flips the switch bound to key. Key codes follow common/key_codes.go.
//
// Parameters:
//   - key: the pressed key code
//
// Returns:
//   - bool: true if the key was bound to a toggle
func (t *Toggles) HandleKey(key uint32) bool {
	switch key {
	case common.KeyC:
		toggle(&t.DisableFrustumCulling)
	case common.KeyF:
		toggle(&t.FreezeCullFrustum)
	case common.KeyR:
		if fn := t.onRefresh.Load(); fn != nil {
			(*fn)()
		}
	default:
		return false
	}
	return true
}

func toggle(b *atomic.Bool) {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return
		}
	}
}
