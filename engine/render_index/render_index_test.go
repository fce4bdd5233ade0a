package render_index

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/common"
	"github.com/Carmen-Shannon/oxy-pass/engine/collection"
	"github.com/Carmen-Shannon/oxy-pass/engine/draw_item"
	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

func paths(items []draw_item.DrawItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.PrimPath())
	}
	return out
}

func TestDrawItemsGroupsByTagInPathOrder(t *testing.T) {
	ri := NewRenderIndex()
	must(t, ri.InsertPrim("/World/b", draw_item.WithRenderTag(draw_item.TagGeometry)))
	must(t, ri.InsertPrim("/World/a", draw_item.WithRenderTag(draw_item.TagGeometry)))
	must(t, ri.InsertPrim("/World/glass", draw_item.WithRenderTag(draw_item.TagTranslucent)))
	must(t, ri.InsertPrim("/Other/c", draw_item.WithRenderTag(draw_item.TagGeometry)))

	items := ri.DrawItems(collection.NewCollection("world", collection.WithRootPaths("/World")))
	if len(items) != 2 {
		t.Fatalf("len(DrawItems()) = %d, want 2 tags", len(items))
	}
	if got, want := paths(items[draw_item.TagGeometry]), []string{"/World/a", "/World/b"}; !slices.Equal(got, want) {
		t.Errorf("geometry items = %v, want %v", got, want)
	}
	if got, want := paths(items[draw_item.TagTranslucent]), []string{"/World/glass"}; !slices.Equal(got, want) {
		t.Errorf("translucent items = %v, want %v", got, want)
	}
	if ri.Count() != 4 {
		t.Errorf("Count() = %d, want 4", ri.Count())
	}
}

func TestEditsBumpTheRightVersions(t *testing.T) {
	ri := NewRenderIndex()
	ct := ri.ChangeTracker()
	must(t, ri.InsertPrim("/a", draw_item.WithBounds(common.NewAABB([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}))))

	type versions struct{ collection, bindings, visibility int }
	snapshot := func() versions {
		return versions{ct.CollectionVersion("c"), ct.ShaderBindingsVersion(), ct.VisibilityChangeCount()}
	}

	tests := []struct {
		name                                  string
		edit                                  func() error
		wantCollection, wantBindings, wantVis bool
	}{
		{"insert", func() error { return ri.InsertPrim("/b") }, true, false, false},
		{"tag change", func() error { return ri.SetRenderTag("/a", draw_item.TagGuide) }, true, false, false},
		{"same tag", func() error { return ri.SetRenderTag("/a", draw_item.TagGuide) }, false, false, false},
		{"visibility", func() error { return ri.SetVisibility("/a", false) }, false, false, true},
		{"same visibility", func() error { return ri.SetVisibility("/a", false) }, false, false, false},
		{"bounds", func() error {
			return ri.SetBounds("/a", common.NewAABB([3]float32{0, 0, 0}, [3]float32{2, 2, 2}))
		}, false, false, false},
		{"transform", func() error { return ri.SetTransform("/a", [3]float32{5, 0, 0}, [3]float32{}, [3]float32{1, 1, 1}) }, false, false, false},
		{"migrate", func() error { return ri.MigrateResources("/a", bind_group_provider.NewBindGroupProvider("moved")) }, false, true, false},
		{"remove", func() error { return ri.RemovePrim("/b") }, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := snapshot()
			must(t, tt.edit())
			after := snapshot()
			if (after.collection != before.collection) != tt.wantCollection {
				t.Errorf("collection version changed = %v, want %v", after.collection != before.collection, tt.wantCollection)
			}
			if (after.bindings != before.bindings) != tt.wantBindings {
				t.Errorf("bindings version changed = %v, want %v", after.bindings != before.bindings, tt.wantBindings)
			}
			if (after.visibility != before.visibility) != tt.wantVis {
				t.Errorf("visibility count changed = %v, want %v", after.visibility != before.visibility, tt.wantVis)
			}
		})
	}
}

func TestSetTransformMovesWorldBounds(t *testing.T) {
	ri := NewRenderIndex()
	must(t, ri.InsertPrim("/a", draw_item.WithBounds(common.NewAABB([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}))))
	must(t, ri.SetTransform("/a", [3]float32{10, 0, 0}, [3]float32{}, [3]float32{2, 2, 2}))

	item := ri.DrawItems(collection.NewCollection("all"))[draw_item.TagGeometry][0]
	b := item.Bounds()
	if b.Min[0] != 8 || b.Max[0] != 12 || b.Min[1] != -2 || b.Max[1] != 2 {
		t.Errorf("Bounds() = %+v, want x in [8,12], y in [-2,2]", b)
	}
}

func TestMigrateResourcesKeepsItemIdentity(t *testing.T) {
	ri := NewRenderIndex()
	must(t, ri.InsertPrim("/a", draw_item.WithMeshProvider(bind_group_provider.NewBindGroupProvider("old"))))
	before := ri.DrawItems(collection.NewCollection("all"))[draw_item.TagGeometry][0]

	must(t, ri.MigrateResources("/a", bind_group_provider.NewBindGroupProvider("new")))
	after := ri.DrawItems(collection.NewCollection("all"))[draw_item.TagGeometry][0]

	if before != after {
		t.Error("MigrateResources replaced the draw item")
	}
	if after.MeshProvider().Label() != "new" {
		t.Errorf("MeshProvider().Label() = %q, want new", after.MeshProvider().Label())
	}
}

func TestErrors(t *testing.T) {
	ri := NewRenderIndex()
	must(t, ri.InsertPrim("/a"))

	if err := ri.InsertPrim("/a"); !errors.Is(err, ErrPrimExists) {
		t.Errorf("InsertPrim duplicate error = %v, want ErrPrimExists", err)
	}
	edits := map[string]error{
		"remove":     ri.RemovePrim("/missing"),
		"visibility": ri.SetVisibility("/missing", true),
		"tag":        ri.SetRenderTag("/missing", draw_item.TagGuide),
		"bounds":     ri.SetBounds("/missing", common.EmptyAABB()),
		"transform":  ri.SetTransform("/missing", [3]float32{}, [3]float32{}, [3]float32{1, 1, 1}),
		"migrate":    ri.MigrateResources("/missing", nil),
	}
	for name, err := range edits {
		if !errors.Is(err, ErrPrimNotFound) {
			t.Errorf("%s error = %v, want ErrPrimNotFound", name, err)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
