// package common contains plain geometry types shared across the scheduler. They are not interface-wrapped structs,
// just values that describe bounds and view volumes.
package common

import "math"

// AABB is an axis-aligned bounding box in world space.
// A box whose Min exceeds its Max on any axis is empty.
type AABB struct {
	// Min is the lower corner of the box.
	Min [3]float32
	// Max is the upper corner of the box.
	Max [3]float32
}

// EmptyAABB returns a box that contains nothing and acts as the identity for Union.
//
// Returns:
//   - AABB: the empty box
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// NewAABB returns the box spanning the two corners, in any order.
//
// Parameters:
//   - a, b: opposite corners of the box
//
// Returns:
//   - AABB: the box
func NewAABB(a, b [3]float32) AABB {
	var box AABB
	for i := range 3 {
		box.Min[i] = min(a[i], b[i])
		box.Max[i] = max(a[i], b[i])
	}
	return box
}

// Empty reports whether the box contains no points.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	var out AABB
	for i := range 3 {
		out.Min[i] = min(b.Min[i], o.Min[i])
		out.Max[i] = max(b.Max[i], o.Max[i])
	}
	return out
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8][3]float32 {
	var c [8][3]float32
	for i := range 8 {
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				c[i][axis] = b.Max[axis]
			} else {
				c[i][axis] = b.Min[axis]
			}
		}
	}
	return c
}

// Transform returns the axis-aligned box enclosing b after applying m to all eight corners.
// An empty box stays empty.
//
// Parameters:
//   - m: the column-major transform
//
// Returns:
//   - AABB: the enclosing box in the transformed space
func (b AABB) Transform(m Mat4) AABB {
	if b.Empty() {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		p := TransformPoint(m, c)
		out = out.Union(AABB{Min: p, Max: p})
	}
	return out
}
