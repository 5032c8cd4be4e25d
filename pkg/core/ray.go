package core

// Ray represents a ray with an origin, a unit direction, and the
// component-wise inverse of that direction cached for slab tests
// (pkg/scene's cube intersection). The inverse is refreshed any time
// the direction changes; callers never compute it by hand.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	InvDir    Vec3
}

func invertDirection(d Vec3) Vec3 {
	return Vec3{X: 1.0 / d.X, Y: 1.0 / d.Y, Z: 1.0 / d.Z}
}

// NewRay creates a ray from an origin and a (not necessarily normalized)
// direction; the direction is normalized before InvDir is derived.
func NewRay(origin, direction Vec3) Ray {
	dir := direction.Normalize()
	return Ray{Origin: origin, Direction: dir, InvDir: invertDirection(dir)}
}

// NewRayTo creates a ray from origin toward target.
func NewRayTo(origin, target Vec3) Ray {
	return NewRay(origin, target.Subtract(origin))
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// WithOrigin returns a copy of the ray with a new origin; InvDir is
// unaffected since only the direction determines it.
func (r Ray) WithOrigin(origin Vec3) Ray {
	r.Origin = origin
	return r
}

// WithDirection returns a copy of the ray with a new direction,
// refreshing InvDir.
func (r Ray) WithDirection(direction Vec3) Ray {
	dir := direction.Normalize()
	r.Direction = dir
	r.InvDir = invertDirection(dir)
	return r
}
