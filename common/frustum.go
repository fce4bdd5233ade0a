package common

import (
	"math"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts normalized frustum planes from a column-major cull matrix
// (typically View * Projection) using the Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - m: the cull matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(m Mat4) Frustum {
	// row(i) of a column-major matrix is (m[i], m[4+i], m[8+i], m[12+i]).
	row := func(i int) [4]float32 {
		return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
	}
	w := row(3)

	var f Frustum
	for axis := range 3 {
		r := row(axis)
		f.Planes[axis*2] = planeFrom(w, r, 1)    // left, bottom, near
		f.Planes[axis*2+1] = planeFrom(w, r, -1) // right, top, far
	}
	return f
}

// planeFrom builds the normalized plane w + sign*r.
func planeFrom(w, r [4]float32, sign float32) Plane {
	p := Plane{
		Normal:   [3]float32{w[0] + sign*r[0], w[1] + sign*r[1], w[2] + sign*r[2]},
		Distance: w[3] + sign*r[3],
	}
	length := float32(math.Sqrt(float64(
		p.Normal[0]*p.Normal[0] +
			p.Normal[1]*p.Normal[1] +
			p.Normal[2]*p.Normal[2],
	)))
	if length > 0 {
		invLen := 1.0 / length
		p.Normal[0] *= invLen
		p.Normal[1] *= invLen
		p.Normal[2] *= invLen
		p.Distance *= invLen
	}
	return p
}

// IntersectsAABB reports whether any part of the box lies inside the frustum.
// The test is conservative: boxes near frustum corners may be reported as
// intersecting when they are not, but a box that is inside is never rejected.
// Empty boxes never intersect.
//
// Parameters:
//   - b: the box to test
//
// Returns:
//   - bool: false only if the box is entirely outside one of the planes
func (f Frustum) IntersectsAABB(b AABB) bool {
	if b.Empty() {
		return false
	}
	for _, p := range f.Planes {
		// Positive vertex: the corner furthest along the plane normal.
		var v [3]float32
		for i := range 3 {
			if p.Normal[i] >= 0 {
				v[i] = b.Max[i]
			} else {
				v[i] = b.Min[i]
			}
		}
		if p.Normal[0]*v[0]+p.Normal[1]*v[1]+p.Normal[2]*v[2]+p.Distance < 0 {
			return false
		}
	}
	return true
}
