package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/common"
)

func TestViewProjectionCullsBehindCamera(t *testing.T) {
	cam := NewCamera(WithLookAt([3]float32{0, 0, 5}, [3]float32{0, 0, 0}), WithClipPlanes(0.1, 50))
	f := common.ExtractFrustum(cam.ViewProjectionMatrix())

	inFront := common.NewAABB([3]float32{-0.5, -0.5, -0.5}, [3]float32{0.5, 0.5, 0.5})
	behind := common.NewAABB([3]float32{-0.5, -0.5, 9}, [3]float32{0.5, 0.5, 10})
	tooFar := common.NewAABB([3]float32{-0.5, -0.5, -100}, [3]float32{0.5, 0.5, -90})

	if !f.IntersectsAABB(inFront) {
		t.Error("box at the origin should be inside the frustum")
	}
	if f.IntersectsAABB(behind) {
		t.Error("box behind the camera should be culled")
	}
	if f.IntersectsAABB(tooFar) {
		t.Error("box past the far plane should be culled")
	}
}

func TestLookAtRecomputesMatrices(t *testing.T) {
	cam := NewCamera()
	before := cam.ViewProjectionMatrix()
	cam.LookAt([3]float32{10, 0, 0}, [3]float32{0, 0, 0})
	if cam.ViewProjectionMatrix() == before {
		t.Error("LookAt did not change the view-projection matrix")
	}
	if cam.Position() != [3]float32{10, 0, 0} {
		t.Errorf("Position() = %v", cam.Position())
	}
}

func TestUniformMarshal(t *testing.T) {
	cam := NewCamera(WithLookAt([3]float32{1, 2, 3}, [3]float32{0, 0, 0}))
	u := cam.Uniform()
	if u.Size() != 80 {
		t.Fatalf("Size() = %d, want 80", u.Size())
	}
	buf := u.Marshal()
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])); got != 1 {
		t.Errorf("camera position x = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != u.ViewProj[0] {
		t.Errorf("view_proj[0] = %v, want %v", got, u.ViewProj[0])
	}
}

func TestBindGroupProviderNamesAreUnique(t *testing.T) {
	a, b := NewCamera(), NewCamera()
	if a.BindGroupProvider().Label() == b.BindGroupProvider().Label() {
		t.Errorf("both cameras use label %q", a.BindGroupProvider().Label())
	}
}
