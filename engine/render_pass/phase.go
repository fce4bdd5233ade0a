package render_pass

// Phase is where a render pass is in its per-frame protocol:
// Idle -> Preparing -> Ready -> Drawing -> Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseReady
	PhaseDrawing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreparing:
		return "preparing"
	case PhaseReady:
		return "ready"
	case PhaseDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}
