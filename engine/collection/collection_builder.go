package collection

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-pass/common"
)

// CollectionBuilderOption is a functional option for configuring a Collection.
type CollectionBuilderOption func(c *Collection)

// WithReprName sets the representation name, for example "refined" or "wireframe".
// An empty name keeps the default.
//
// Parameters:
//   - repr: the representation name
//
// Returns:
//   - CollectionBuilderOption: option function to apply
func WithReprName(repr string) CollectionBuilderOption {
	return func(c *Collection) {
		c.reprName = common.Coalesce(repr, c.reprName)
	}
}

// WithRootPaths replaces the root paths. An empty list keeps DefaultRootPath.
//
// Parameters:
//   - paths: the absolute prim paths whose subtrees are included
//
// Returns:
//   - CollectionBuilderOption: option function to apply
func WithRootPaths(paths ...string) CollectionBuilderOption {
	return func(c *Collection) {
		if len(paths) == 0 {
			return
		}
		c.rootPaths = slices.Clone(paths)
	}
}

// WithExcludePaths sets subtrees removed from the collection.
//
// Parameters:
//   - paths: the absolute prim paths whose subtrees are excluded
//
// Returns:
//   - CollectionBuilderOption: option function to apply
func WithExcludePaths(paths ...string) CollectionBuilderOption {
	return func(c *Collection) {
		c.excludePaths = slices.Clone(paths)
	}
}
