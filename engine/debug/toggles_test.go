package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/common"
)

func TestTogglesHandleKey(t *testing.T) {
	tg := NewToggles()

	if !tg.HandleKey(common.KeyC) {
		t.Fatal("KeyC not handled")
	}
	if !tg.CullingDisabled() {
		t.Fatal("KeyC did not disable culling")
	}
	tg.HandleKey(common.KeyC)
	if tg.CullingDisabled() {
		t.Fatal("second KeyC did not re-enable culling")
	}

	tg.HandleKey(common.KeyF)
	if !tg.CullingFrozen() {
		t.Fatal("KeyF did not freeze culling")
	}

	if tg.HandleKey(0) {
		t.Fatal("unbound key reported as handled")
	}
}

func TestTogglesRefreshCallback(t *testing.T) {
	tg := NewToggles()
	calls := 0
	tg.OnRefresh(func() { calls++ })

	tg.HandleKey(common.KeyR)
	tg.HandleKey(common.KeyR)
	if calls != 2 {
		t.Fatalf("refresh callback ran %d times, want 2", calls)
	}

	tg.OnRefresh(nil)
	tg.HandleKey(common.KeyR)
	if calls != 2 {
		t.Fatalf("cleared refresh callback still ran")
	}
}

func TestNilTogglesReadAsOff(t *testing.T) {
	var tg *Toggles
	if tg.CullingDisabled() || tg.CullingFrozen() {
		t.Fatal("nil toggles reported a switch as on")
	}
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("hello", "category", CategoryCollectionChanged)
	if !strings.Contains(buf.String(), "category="+CategoryCollectionChanged) {
		t.Fatalf("log output %q missing category", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Fatal("SetLogger(nil) should restore the silent logger")
	}
}
