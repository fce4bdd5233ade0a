// Package pass_state carries the per-frame parameters a render pass draws with.
package pass_state

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

// PassState is the caller's snapshot of one frame: the matrix to cull against, the
// encoder draws are recorded into, and per-pass bind groups. Render passes only read it.
type PassState interface {
	// CullMatrix returns the column-major view-projection matrix used for frustum culling.
	CullMatrix() common.Mat4

	// Encoder returns the draw encoder for this frame, or nil to skip submission.
	Encoder() renderer.DrawEncoder

	// BindGroups returns the per-pass bind groups bound after the registry's shared ones.
	BindGroups() []bind_group_provider.BindGroupProvider

	// IndirectDraw reports whether batches with a GPU-written indirect buffer should be
	// drawn indirectly.
	IndirectDraw() bool

	// SetCullMatrix replaces the cull matrix for the next frame.
	SetCullMatrix(m common.Mat4)

	// SetEncoder replaces the draw encoder for the next frame.
	SetEncoder(enc renderer.DrawEncoder)
}

type passState struct {
	mu *sync.RWMutex

	cullMatrix   common.Mat4
	encoder      renderer.DrawEncoder
	bindGroups   []bind_group_provider.BindGroupProvider
	indirectDraw bool
}

var _ PassState = &passState{}

// NewPassState creates a pass state with an identity cull matrix and no encoder.
//
// Parameters:
//   - options: functional options to configure the state
//
// Returns:
//   - PassState: the new state
func NewPassState(options ...PassStateBuilderOption) PassState {
	s := &passState{
		mu:         &sync.RWMutex{},
		cullMatrix: common.Identity(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *passState) CullMatrix() common.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullMatrix
}

func (s *passState) Encoder() renderer.DrawEncoder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoder
}

func (s *passState) BindGroups() []bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bindGroups)
}

func (s *passState) IndirectDraw() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indirectDraw
}

func (s *passState) SetCullMatrix(m common.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullMatrix = m
}

func (s *passState) SetEncoder(enc renderer.DrawEncoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoder = enc
}
