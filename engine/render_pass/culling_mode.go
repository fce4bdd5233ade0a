package render_pass

// CullingMode is the culling strategy a render pass resolved for the current frame.
type CullingMode int

const (
	// CullingModeActive runs a CPU frustum cull against the frame's cull matrix.
	CullingModeActive CullingMode = iota
	// CullingModeFrozen reuses the previous frame's cull results.
	CullingModeFrozen
	// CullingModeSkip runs no frustum test; items follow their authored visibility.
	// Selected when culling is disabled or the GPU culls through indirect draws.
	CullingModeSkip
)

func (m CullingMode) String() string {
	switch m {
	case CullingModeActive:
		return "active"
	case CullingModeFrozen:
		return "frozen"
	case CullingModeSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// cullingInputs is what the resolver reads each frame.
type cullingInputs struct {
	disableToggle     bool
	freezeToggle      bool
	gpuCulling        bool
	collectionChanged bool
	lastSkip          bool
}

// resolveCullingMode picks the frame's culling mode. justChanged reports a switch between
// skipping and not skipping since the previous frame; a structural or mode change
// always thaws a frozen cull.
func resolveCullingMode(in cullingInputs) (mode CullingMode, skip, justChanged bool) {
	skip = in.disableToggle || in.gpuCulling
	justChanged = skip != in.lastSkip
	freeze := in.freezeToggle && !in.collectionChanged && !justChanged

	switch {
	case skip:
		return CullingModeSkip, skip, justChanged
	case freeze:
		return CullingModeFrozen, skip, justChanged
	default:
		return CullingModeActive, skip, justChanged
	}
}
