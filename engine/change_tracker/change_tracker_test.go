package change_tracker

import (
	"sync"
	"testing"
)

func TestInitialVersionsAreNonZero(t *testing.T) {
	ct := NewChangeTracker()
	if ct.CollectionVersion("geometry") == 0 {
		t.Error("CollectionVersion() = 0, a fresh pass would miss its first rebuild")
	}
	if ct.ShaderBindingsVersion() != 1 || ct.VisibilityChangeCount() != 1 {
		t.Errorf("versions = %d, %d, want 1, 1", ct.ShaderBindingsVersion(), ct.VisibilityChangeCount())
	}
}

func TestMarkCollectionDirty(t *testing.T) {
	ct := NewChangeTracker()
	geo := ct.CollectionVersion("geometry")
	guides := ct.CollectionVersion("guides")

	ct.MarkCollectionDirty("geometry")
	if ct.CollectionVersion("geometry") <= geo {
		t.Error("MarkCollectionDirty did not bump the named collection")
	}
	if ct.CollectionVersion("guides") != guides {
		t.Error("MarkCollectionDirty bumped an unrelated collection")
	}

	geo = ct.CollectionVersion("geometry")
	ct.MarkAllCollectionsDirty()
	if ct.CollectionVersion("geometry") <= geo || ct.CollectionVersion("guides") <= guides {
		t.Error("MarkAllCollectionsDirty did not bump every collection")
	}
}

func TestBindingsAndVisibilityAreIndependent(t *testing.T) {
	ct := NewChangeTracker()
	col := ct.CollectionVersion("c")

	ct.MarkShaderBindingsDirty()
	ct.MarkVisibilityDirty()
	ct.MarkVisibilityDirty()

	if ct.ShaderBindingsVersion() != 2 {
		t.Errorf("ShaderBindingsVersion() = %d, want 2", ct.ShaderBindingsVersion())
	}
	if ct.VisibilityChangeCount() != 3 {
		t.Errorf("VisibilityChangeCount() = %d, want 3", ct.VisibilityChangeCount())
	}
	if ct.CollectionVersion("c") != col {
		t.Error("binding or visibility edits changed the collection version")
	}
}

func TestConcurrentMarks(t *testing.T) {
	ct := NewChangeTracker()
	start := ct.CollectionVersion("c")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				ct.MarkCollectionDirty("c")
				_ = ct.CollectionVersion("c")
			}
		}()
	}
	wg.Wait()

	if got, want := ct.CollectionVersion("c"), start+800; got != want {
		t.Errorf("CollectionVersion() = %d, want %d", got, want)
	}
}
