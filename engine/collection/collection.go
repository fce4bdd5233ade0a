// Package collection describes which prims a render pass draws.
package collection

import (
	"slices"
	"strings"
)

// DefaultRootPath includes every prim in the scene.
const DefaultRootPath = "/"

// Collection names a set of prims by root and exclude paths. Its contents are owned by
// the render index; a render pass only holds the definition and compares versions.
//
// Collections are plain values. Two passes built from equal collections still keep
// separate command buffers.
type Collection struct {
	name         string
	reprName     string
	rootPaths    []string
	excludePaths []string
}

// NewCollection creates a collection rooted at DefaultRootPath unless WithRootPaths says otherwise.
//
// Parameters:
//   - name: the collection name used for version lookups
//   - options: functional options to configure the collection
//
// Returns:
//   - Collection: the collection definition
func NewCollection(name string, options ...CollectionBuilderOption) Collection {
	c := Collection{
		name:      name,
		reprName:  "refined",
		rootPaths: []string{DefaultRootPath},
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// Name returns the collection name.
func (c Collection) Name() string {
	return c.name
}

// ReprName returns the representation the collection is drawn with.
func (c Collection) ReprName() string {
	return c.reprName
}

// RootPaths returns a copy of the root paths.
func (c Collection) RootPaths() []string {
	return slices.Clone(c.rootPaths)
}

// ExcludePaths returns a copy of the exclude paths.
func (c Collection) ExcludePaths() []string {
	return slices.Clone(c.excludePaths)
}

// Contains reports whether the prim at path is under some root path and under no exclude path.
//
// Parameters:
//   - path: the absolute prim path
//
// Returns:
//   - bool: true if the collection includes the prim
func (c Collection) Contains(path string) bool {
	for _, ex := range c.excludePaths {
		if hasPathPrefix(path, ex) {
			return false
		}
	}
	for _, root := range c.rootPaths {
		if hasPathPrefix(path, root) {
			return true
		}
	}
	return false
}

// Equal reports whether two collections have the same definition. Path order is ignored.
//
// Parameters:
//   - other: the collection to compare against
//
// Returns:
//   - bool: true if both select the same prims under the same name and repr
func (c Collection) Equal(other Collection) bool {
	return c.name == other.name &&
		c.reprName == other.reprName &&
		samePaths(c.rootPaths, other.rootPaths) &&
		samePaths(c.excludePaths, other.excludePaths)
}

// hasPathPrefix reports whether path equals prefix or is a descendant of it.
func hasPathPrefix(path, prefix string) bool {
	if prefix == DefaultRootPath {
		return strings.HasPrefix(path, DefaultRootPath)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func samePaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
