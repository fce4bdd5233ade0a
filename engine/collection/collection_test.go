package collection

import "testing"

func TestContains(t *testing.T) {
	c := NewCollection("geometry",
		WithRootPaths("/World", "/Props/"),
		WithExcludePaths("/World/Hidden"),
	)
	tests := []struct {
		path string
		want bool
	}{
		{"/World", true},
		{"/World/Cube", true},
		{"/WorldOther/Cube", false},
		{"/Props/Chair", true},
		{"/World/Hidden", false},
		{"/World/Hidden/Sphere", false},
		{"/World/HiddenNot", true},
		{"/Lights/Key", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := c.Contains(tt.path); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDefaultRootIncludesEverything(t *testing.T) {
	c := NewCollection("all")
	if c.ReprName() != "refined" {
		t.Errorf("ReprName() = %q, want refined", c.ReprName())
	}
	if got := NewCollection("all", WithReprName("")).ReprName(); got != "refined" {
		t.Errorf("WithReprName(\"\") ReprName() = %q, want refined", got)
	}
	for _, p := range []string{"/", "/a", "/a/b/c"} {
		if !c.Contains(p) {
			t.Errorf("Contains(%q) = false, want true", p)
		}
	}
	// An empty root list keeps the default.
	if !NewCollection("all", WithRootPaths()).Contains("/x") {
		t.Error("WithRootPaths() with no paths dropped the default root")
	}
}

func TestEqual(t *testing.T) {
	base := NewCollection("geometry", WithRootPaths("/A", "/B"))
	tests := []struct {
		name  string
		other Collection
		want  bool
	}{
		{"same", NewCollection("geometry", WithRootPaths("/A", "/B")), true},
		{"reordered roots", NewCollection("geometry", WithRootPaths("/B", "/A")), true},
		{"different name", NewCollection("guides", WithRootPaths("/A", "/B")), false},
		{"different repr", NewCollection("geometry", WithRootPaths("/A", "/B"), WithReprName("wire")), false},
		{"extra exclude", NewCollection("geometry", WithRootPaths("/A", "/B"), WithExcludePaths("/A/x")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathsAreCopied(t *testing.T) {
	roots := []string{"/A"}
	c := NewCollection("c", WithRootPaths(roots...))
	roots[0] = "/B"
	if c.RootPaths()[0] != "/A" {
		t.Error("collection aliased the caller's root slice")
	}
}
