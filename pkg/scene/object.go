// Package scene holds the closed set of ray-intersectable primitives
// (sphere, rect, disk, cube), the light emitter they may carry, and
// the Scene that owns a collection of them.
package scene

import (
	"math"

	"github.com/kjhartman/lumenpath/pkg/core"
	"github.com/kjhartman/lumenpath/pkg/material"
)

// Shape tags which of the four closed-form primitives a SceneObject
// represents. SceneObject is a sum type over a closed shape set rather
// than a type hierarchy: one struct, one tag, intersection dispatches
// by switch.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeRect
	ShapeDisk
	ShapeCube
)

// Emitter is a constant-radiance light source carried by an emissive
// SceneObject.
type Emitter struct {
	Le core.Spectrum
}

// SurfaceIntersection is the result of intersecting a ray with a
// SceneObject: a nil Object means a miss. Normal is outward-oriented,
// flipped inward when IsOnOuterSurface is false.
type SurfaceIntersection struct {
	Object           *SceneObject
	Point            core.Vec3
	Normal           core.Vec3
	T                float64
	IsOnOuterSurface bool
}

// Hit reports whether the intersection represents an actual hit.
func (si SurfaceIntersection) Hit() bool {
	return si.Object != nil
}

// SceneObject is the sum-type primitive: a shared pose, a shape tag,
// and the shape's own parameters, plus an
// optional material and an optional emitter. Only the fields relevant
// to Shape are populated.
type SceneObject struct {
	Shape Shape

	// Pose, shared by every shape: Position is the sphere center / the
	// rect-disk-cube origin; Normal and Tangent define the local frame
	// for rect and disk; HalfExtents holds (radius,0,0) for sphere and
	// disk, (ex,ey,0) for rect, and the cube's three half-widths.
	Position    core.Vec3
	Normal      core.Vec3
	Tangent     core.Vec3
	HalfExtents core.Vec3

	DualFace bool

	Material material.Material
	Emitter  *Emitter
}

// IsEmissive reports whether this object carries a light emitter.
func (o *SceneObject) IsEmissive() bool {
	return o.Emitter != nil
}

// IsDualFace reports whether both sides of the primitive are treated
// as front-facing for light-sampling purposes.
func (o *SceneObject) IsDualFace() bool {
	return o.DualFace
}

// NewSphere builds a sphere SceneObject at center with the given
// radius.
func NewSphere(center core.Vec3, radius float64, mat material.Material) *SceneObject {
	return &SceneObject{
		Shape:       ShapeSphere,
		Position:    center,
		HalfExtents: core.NewVec3(radius, 0, 0),
		Material:    mat,
	}
}

// NewRect builds an axis-tangent rectangle at position p with normal
// n, tangent t, and half-extents (ex, ey).
func NewRect(p, n, t core.Vec3, ex, ey float64, dualFace bool, mat material.Material) *SceneObject {
	return &SceneObject{
		Shape:       ShapeRect,
		Position:    p,
		Normal:      n.Normalize(),
		Tangent:     t.Normalize(),
		HalfExtents: core.NewVec3(ex, ey, 0),
		DualFace:    dualFace,
		Material:    mat,
	}
}

// NewDisk builds a disk at position p with normal n and the given
// radius.
func NewDisk(p, n core.Vec3, radius float64, dualFace bool, mat material.Material) *SceneObject {
	_, tangent := core.CoordinateSystem(n.Normalize())
	return &SceneObject{
		Shape:       ShapeDisk,
		Position:    p,
		Normal:      n.Normalize(),
		Tangent:     tangent,
		HalfExtents: core.NewVec3(radius, 0, 0),
		DualFace:    dualFace,
		Material:    mat,
	}
}

// NewCube builds an axis-aligned cube centered at p with half-widths
// halfExtents.
func NewCube(p, halfExtents core.Vec3, mat material.Material) *SceneObject {
	return &SceneObject{
		Shape:       ShapeCube,
		Position:    p,
		HalfExtents: halfExtents,
		Material:    mat,
	}
}

// WithEmitter attaches a constant-radiance emitter to the object and
// returns it for chaining.
func (o *SceneObject) WithEmitter(le core.Spectrum) *SceneObject {
	o.Emitter = &Emitter{Le: le}
	return o
}

// IntersectWithRay dispatches to the per-shape intersection predicate
// on Shape.
func (o *SceneObject) IntersectWithRay(ray core.Ray, epsilon float64) SurfaceIntersection {
	switch o.Shape {
	case ShapeSphere:
		return o.intersectSphere(ray, epsilon)
	case ShapeRect:
		return o.intersectRect(ray, epsilon)
	case ShapeDisk:
		return o.intersectDisk(ray, epsilon)
	case ShapeCube:
		return o.intersectCube(ray, epsilon)
	}
	return SurfaceIntersection{}
}

func (o *SceneObject) intersectSphere(ray core.Ray, epsilon float64) SurfaceIntersection {
	radius := o.HalfExtents.X
	oc := ray.Origin.Subtract(o.Position)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant <= 0 {
		return SurfaceIntersection{}
	}
	sqrtD := math.Sqrt(discriminant)

	isOuter := true
	t := (-b - sqrtD) / (2 * a)
	if t < epsilon {
		t = (-b + sqrtD) / (2 * a)
		isOuter = false
		if t < epsilon {
			return SurfaceIntersection{}
		}
	}

	point := ray.At(t)
	outward := point.Subtract(o.Position).Multiply(1.0 / radius)
	normal := outward
	if !isOuter {
		normal = normal.Negate()
	}

	return SurfaceIntersection{Object: o, Point: point, Normal: normal, T: t, IsOnOuterSurface: isOuter}
}

func (o *SceneObject) intersectRect(ray core.Ray, epsilon float64) SurfaceIntersection {
	n := o.Normal
	denom := n.Dot(ray.Direction)
	if math.Abs(denom) < 1e-9 {
		return SurfaceIntersection{}
	}

	isOuter := denom < 0
	if !isOuter && !o.DualFace {
		return SurfaceIntersection{}
	}

	t := o.Position.Subtract(ray.Origin).Dot(n) / denom
	if t < epsilon {
		return SurfaceIntersection{}
	}

	point := ray.At(t)
	b := n.Cross(o.Tangent)
	local := point.Subtract(o.Position)
	du := local.Dot(o.Tangent)
	dv := local.Dot(b)
	if math.Abs(du) > o.HalfExtents.X || math.Abs(dv) > o.HalfExtents.Y {
		return SurfaceIntersection{}
	}

	normal := n
	if !isOuter {
		normal = normal.Negate()
	}

	return SurfaceIntersection{Object: o, Point: point, Normal: normal, T: t, IsOnOuterSurface: isOuter}
}

func (o *SceneObject) intersectDisk(ray core.Ray, epsilon float64) SurfaceIntersection {
	n := o.Normal
	denom := n.Dot(ray.Direction)
	if math.Abs(denom) < 1e-9 {
		return SurfaceIntersection{}
	}

	isOuter := denom < 0
	if !isOuter && !o.DualFace {
		return SurfaceIntersection{}
	}

	t := o.Position.Subtract(ray.Origin).Dot(n) / denom
	if t < epsilon {
		return SurfaceIntersection{}
	}

	point := ray.At(t)
	radius := o.HalfExtents.X
	if point.Subtract(o.Position).LengthSquared() > radius*radius {
		return SurfaceIntersection{}
	}

	normal := n
	if !isOuter {
		normal = normal.Negate()
	}

	return SurfaceIntersection{Object: o, Point: point, Normal: normal, T: t, IsOnOuterSurface: isOuter}
}

// intersectCube implements the slab method against the cube's three
// axes, reporting both entry and exit normals so that rays originating
// inside report IsOnOuterSurface=false with an inward normal.
func (o *SceneObject) intersectCube(ray core.Ray, epsilon float64) SurfaceIntersection {
	minB := o.Position.Subtract(o.HalfExtents)
	maxB := o.Position.Add(o.HalfExtents)

	tMin, tMax := math.Inf(-1), math.Inf(1)
	var entryAxis, exitAxis int
	entrySign, exitSign := 1.0, 1.0

	origins := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	invDirs := [3]float64{ray.InvDir.X, ray.InvDir.Y, ray.InvDir.Z}
	minVals := [3]float64{minB.X, minB.Y, minB.Z}
	maxVals := [3]float64{maxB.X, maxB.Y, maxB.Z}

	for axis := 0; axis < 3; axis++ {
		t0 := (minVals[axis] - origins[axis]) * invDirs[axis]
		t1 := (maxVals[axis] - origins[axis]) * invDirs[axis]
		sign0, sign1 := -1.0, 1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign0, sign1 = 1.0, -1.0
		}
		if t0 > tMin {
			tMin = t0
			entryAxis = axis
			entrySign = sign0
		}
		if t1 < tMax {
			tMax = t1
			exitAxis = axis
			exitSign = sign1
		}
		if tMax <= tMin {
			return SurfaceIntersection{}
		}
	}

	axisNormal := func(axis int, sign float64) core.Vec3 {
		switch axis {
		case 0:
			return core.NewVec3(sign, 0, 0)
		case 1:
			return core.NewVec3(0, sign, 0)
		default:
			return core.NewVec3(0, 0, sign)
		}
	}

	if tMin >= epsilon {
		point := ray.At(tMin)
		return SurfaceIntersection{Object: o, Point: point, Normal: axisNormal(entryAxis, entrySign), T: tMin, IsOnOuterSurface: true}
	}
	if tMax >= epsilon {
		point := ray.At(tMax)
		return SurfaceIntersection{Object: o, Point: point, Normal: axisNormal(exitAxis, exitSign).Negate(), T: tMax, IsOnOuterSurface: false}
	}
	return SurfaceIntersection{}
}

// SampleRandomPoint draws a point on the primitive's surface, uniformly
// over area for every shape. u carries three independent uniform
// draws; rect and disk spend only the first two, sphere spends the
// first two on a full-sphere direction, and cube spends all three
// (face choice, then two independent in-face offsets).
func (o *SceneObject) SampleRandomPoint(u core.Vec3) core.Vec3 {
	switch o.Shape {
	case ShapeRect:
		b := o.Normal.Cross(o.Tangent)
		du := (2*u.X - 1) * o.HalfExtents.X
		dv := (2*u.Y - 1) * o.HalfExtents.Y
		return o.Position.Add(o.Tangent.Multiply(du)).Add(b.Multiply(dv))

	case ShapeDisk:
		x, y := core.SampleUniformDisk(core.NewVec2(u.X, u.Y))
		radius := o.HalfExtents.X
		b := o.Normal.Cross(o.Tangent)
		return o.Position.Add(o.Tangent.Multiply(x * radius)).Add(b.Multiply(y * radius))

	case ShapeSphere:
		z := 1 - 2*u.X
		r := math.Sqrt(math.Max(0, 1-z*z))
		phi := 2 * math.Pi * u.Y
		dir := core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
		return o.Position.Add(dir.Multiply(o.HalfExtents.X))

	case ShapeCube:
		// Face chosen by u.X with probability proportional to that
		// face's area (so a non-cube box weights its two large faces
		// more than its two small ones), then u.Y and u.Z as
		// independent in-face offsets.
		ex, ey, ez := o.HalfExtents.X, o.HalfExtents.Y, o.HalfExtents.Z
		faces := []core.Vec3{
			core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
			core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
			core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
		}
		faceAreas := []float64{4 * ey * ez, 4 * ey * ez, 4 * ex * ez, 4 * ex * ez, 4 * ex * ey, 4 * ex * ey}
		target := u.X * o.area()
		idx := len(faces) - 1
		cumulative := 0.0
		for i, a := range faceAreas {
			cumulative += a
			if target < cumulative {
				idx = i
				break
			}
		}
		n := faces[idx]
		t, b := core.CoordinateSystem(n)
		offset := n.MultiplyVec(o.HalfExtents)
		du := (2*u.Y - 1) * o.HalfExtents.Dot(t)
		dv := (2*u.Z - 1) * o.HalfExtents.Dot(b)
		return o.Position.Add(offset).Add(t.Multiply(du)).Add(b.Multiply(dv))
	}
	return o.Position
}

// SamplePdf converts the primitive's area-sampling density at hit into
// a solid-angle PDF as seen from ray.Origin:
// pdf = t²/(area·|N·(−d)|).
func (o *SceneObject) SamplePdf(hit SurfaceIntersection, ray core.Ray) float64 {
	area := o.area()
	if area <= 0 {
		return 0
	}
	cosine := hit.Normal.Dot(ray.Direction.Negate())
	if o.DualFace {
		cosine = math.Abs(cosine)
	}
	if cosine <= 1e-9 {
		return 0
	}
	return hit.T * hit.T / (area * cosine)
}

func (o *SceneObject) area() float64 {
	switch o.Shape {
	case ShapeSphere:
		r := o.HalfExtents.X
		return 4 * math.Pi * r * r
	case ShapeRect:
		return 4 * o.HalfExtents.X * o.HalfExtents.Y
	case ShapeDisk:
		r := o.HalfExtents.X
		return math.Pi * r * r
	case ShapeCube:
		ex, ey, ez := o.HalfExtents.X, o.HalfExtents.Y, o.HalfExtents.Z
		return 8 * (ex*ey + ey*ez + ez*ex)
	}
	return 0
}
