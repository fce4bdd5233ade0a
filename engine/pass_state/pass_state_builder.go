package pass_state

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/camera"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

// PassStateBuilderOption is a functional option for configuring a PassState.
type PassStateBuilderOption func(s *passState)

// WithCullMatrix sets the matrix frustum culling tests against.
//
// Parameters:
//   - m: the column-major view-projection matrix
//
// Returns:
//   - PassStateBuilderOption: option function to apply
func WithCullMatrix(m common.Mat4) PassStateBuilderOption {
	return func(s *passState) {
		s.cullMatrix = m
	}
}

// WithCamera takes the cull matrix from the camera and binds the camera's provider
// first among the per-pass bind groups.
//
// Parameters:
//   - cam: the camera to read
//
// Returns:
//   - PassStateBuilderOption: option function to apply
func WithCamera(cam camera.Camera) PassStateBuilderOption {
	return func(s *passState) {
		s.cullMatrix = cam.ViewProjectionMatrix()
		if bg := cam.BindGroupProvider(); bg != nil {
			s.bindGroups = append([]bind_group_provider.BindGroupProvider{bg}, s.bindGroups...)
		}
	}
}

// WithEncoder sets the encoder draws are recorded into.
//
// Parameters:
//   - enc: the draw encoder
//
// Returns:
//   - PassStateBuilderOption: option function to apply
func WithEncoder(enc renderer.DrawEncoder) PassStateBuilderOption {
	return func(s *passState) {
		s.encoder = enc
	}
}

// WithBindGroups appends per-pass bind groups.
//
// Parameters:
//   - providers: the bind group providers
//
// Returns:
//   - PassStateBuilderOption: option function to apply
func WithBindGroups(providers ...bind_group_provider.BindGroupProvider) PassStateBuilderOption {
	return func(s *passState) {
		s.bindGroups = append(s.bindGroups, slices.Clone(providers)...)
	}
}

// WithIndirectDraw requests indirect submission for batches that have an indirect buffer.
//
// Parameters:
//   - enabled: true to draw indirectly where possible
//
// Returns:
//   - PassStateBuilderOption: option function to apply
func WithIndirectDraw(enabled bool) PassStateBuilderOption {
	return func(s *passState) {
		s.indirectDraw = enabled
	}
}
