package renderer

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

func TestResourceRegistryPipelines(t *testing.T) {
	r := NewResourceRegistry()
	r.RegisterPipeline("opaque", nil)
	r.RegisterPipeline("glass", nil)

	if !r.HasPipeline("opaque") {
		t.Error("HasPipeline(opaque) = false, want true")
	}
	if _, err := r.Pipeline("missing"); !errors.Is(err, ErrPipelineNotFound) {
		t.Errorf("Pipeline(missing) error = %v, want ErrPipelineNotFound", err)
	}
	if p, err := r.Pipeline("glass"); err != nil || p != nil {
		t.Errorf("Pipeline(glass) = %v, %v, want nil, nil", p, err)
	}
	if got, want := r.PipelineKeys(), []string{"glass", "opaque"}; !slices.Equal(got, want) {
		t.Errorf("PipelineKeys() = %v, want %v", got, want)
	}
}

func TestResourceRegistryIndirectBuffers(t *testing.T) {
	r := NewResourceRegistry()
	key := BatchKey("opaque", "cube")
	if key != "opaque|cube" {
		t.Fatalf("BatchKey() = %q", key)
	}
	if r.IndirectBuffer(key) != nil {
		t.Fatal("expected no indirect buffer before one is set")
	}
	r.SetIndirectBuffer(key, nil)
	if r.IndirectBuffer(key) != nil {
		t.Fatal("setting nil must not register a buffer")
	}
}

func TestResourceRegistryBindGroupsAreCopied(t *testing.T) {
	r := NewResourceRegistry()
	camera := bind_group_provider.NewBindGroupProvider("camera")
	lights := bind_group_provider.NewBindGroupProvider("lights")
	r.SetBindGroups(camera, lights)

	got := r.BindGroups()
	if len(got) != 2 || got[0].Label() != "camera" || got[1].Label() != "lights" {
		t.Fatalf("BindGroups() = %v", got)
	}
	got[0] = lights
	if r.BindGroups()[0].Label() != "camera" {
		t.Error("mutating the returned slice changed the registry")
	}
}
