package draw_item

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

func cullMatrix() common.Mat4 {
	proj := common.Perspective(float32(math.Pi/2), 1, 0.1, 100)
	view := common.LookAt([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	return common.Mul4(proj, view)
}

func TestNewDrawItemDefaults(t *testing.T) {
	d := NewDrawItem("/World/cube")

	if d.PrimPath() != "/World/cube" {
		t.Errorf("PrimPath() = %q", d.PrimPath())
	}
	if d.RenderTag() != TagGeometry {
		t.Errorf("RenderTag() = %q, want %q", d.RenderTag(), TagGeometry)
	}
	if !d.Visible() {
		t.Error("new item is not visible")
	}
	if d.InstanceCount() != 1 {
		t.Errorf("InstanceCount() = %d, want 1", d.InstanceCount())
	}
	if !d.Bounds().Empty() {
		t.Errorf("Bounds() = %v, want empty", d.Bounds())
	}
}

func TestDrawItemOptionsAndSetters(t *testing.T) {
	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	d := NewDrawItem("/World/glass",
		WithRenderTag(TagTranslucent),
		WithVisible(false),
		WithPipelineKey("glass_pipeline"),
		WithMeshProvider(mesh),
		WithInstanceCount(-4),
	)

	if d.RenderTag() != TagTranslucent || d.Visible() || d.PipelineKey() != "glass_pipeline" || d.MeshProvider() != mesh {
		t.Fatal("options were not applied")
	}
	if d.InstanceCount() != 0 {
		t.Errorf("InstanceCount() = %d, want clamped 0", d.InstanceCount())
	}

	other := bind_group_provider.NewBindGroupProvider("migrated")
	d.SetMeshProvider(other)
	d.SetVisible(true)
	d.SetRenderTag(TagGuide)
	d.SetInstanceCount(3)
	d.SetPipelineKey("guide_pipeline")
	if d.MeshProvider() != other || !d.Visible() || d.RenderTag() != TagGuide || d.InstanceCount() != 3 || d.PipelineKey() != "guide_pipeline" {
		t.Fatal("setters were not applied")
	}
}

func TestDrawItemIntersectsViewVolume(t *testing.T) {
	m := cullMatrix()

	inside := NewDrawItem("/in", WithBounds(common.NewAABB([3]float32{-1, -1, -11}, [3]float32{1, 1, -9})))
	if !inside.IntersectsViewVolume(m) {
		t.Error("item in front of the camera was culled")
	}

	behind := NewDrawItem("/behind", WithBounds(common.NewAABB([3]float32{-1, -1, 9}, [3]float32{1, 1, 11})))
	if behind.IntersectsViewVolume(m) {
		t.Error("item behind the camera was not culled")
	}

	unbounded := NewDrawItem("/unbounded")
	if !unbounded.IntersectsViewVolume(m) {
		t.Error("item without bounds was culled")
	}

	behind.SetBounds(inside.Bounds())
	if !behind.IntersectsViewVolume(m) {
		t.Error("moved item was still culled")
	}
}

func TestDrawItemIntersectsFrustumMatchesViewVolume(t *testing.T) {
	m := cullMatrix()
	f := common.ExtractFrustum(m)
	tests := []struct {
		name   string
		bounds common.AABB
		want   bool
	}{
		{name: "in front", bounds: common.NewAABB([3]float32{-1, -1, -11}, [3]float32{1, 1, -9}), want: true},
		{name: "behind", bounds: common.NewAABB([3]float32{-1, -1, 9}, [3]float32{1, 1, 11}), want: false},
		{name: "unbounded", bounds: common.EmptyAABB(), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDrawItem("/" + tt.name)
			d.SetBounds(tt.bounds)
			if got := d.IntersectsFrustum(f); got != tt.want {
				t.Errorf("IntersectsFrustum = %v, want %v", got, tt.want)
			}
			if got := d.IntersectsViewVolume(m); got != d.IntersectsFrustum(f) {
				t.Errorf("IntersectsViewVolume = %v disagrees with IntersectsFrustum", got)
			}
		})
	}
}
