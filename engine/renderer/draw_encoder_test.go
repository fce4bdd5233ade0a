package renderer

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
)

func TestRecordingEncoderRecordsInOrder(t *testing.T) {
	enc := NewRecordingEncoder(nil)
	cube := bind_group_provider.NewBindGroupProvider("cube")
	camera := bind_group_provider.NewBindGroupProvider("camera")

	if err := enc.DrawCall("opaque", cube, 3, []bind_group_provider.BindGroupProvider{camera}); err != nil {
		t.Fatalf("DrawCall() error = %v", err)
	}
	if err := enc.DrawCallIndirect("opaque", cube, nil, nil); err != nil {
		t.Fatalf("DrawCallIndirect() error = %v", err)
	}

	cmds := enc.Commands()
	if len(cmds) != 2 {
		t.Fatalf("len(Commands()) = %d, want 2", len(cmds))
	}
	first := cmds[0]
	if first.PipelineKey != "opaque" || first.Mesh != "cube" || first.InstanceCount != 3 || first.Indirect {
		t.Errorf("first command = %+v", first)
	}
	if !slices.Equal(first.BindGroups, []string{"camera"}) {
		t.Errorf("first.BindGroups = %v, want [camera]", first.BindGroups)
	}
	if !cmds[1].Indirect {
		t.Error("second command should be indirect")
	}

	enc.Reset()
	if len(enc.Commands()) != 0 {
		t.Error("Reset() left recorded commands")
	}
}

func TestRecordingEncoderValidatesPipelines(t *testing.T) {
	reg := NewResourceRegistry()
	reg.RegisterPipeline("opaque", nil)
	enc := NewRecordingEncoder(reg)
	mesh := bind_group_provider.NewBindGroupProvider("cube")

	if err := enc.DrawCall("opaque", mesh, 1, nil); err != nil {
		t.Fatalf("DrawCall(opaque) error = %v", err)
	}
	err := enc.DrawCall("missing", mesh, 1, nil)
	if !errors.Is(err, ErrPipelineNotFound) {
		t.Fatalf("DrawCall(missing) error = %v, want ErrPipelineNotFound", err)
	}
	if got := len(enc.Commands()); got != 1 {
		t.Errorf("len(Commands()) = %d, want 1", got)
	}
}
