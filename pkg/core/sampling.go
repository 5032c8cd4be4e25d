package core

import "math"

// SampleCosineHemisphere draws a cosine-weighted direction in the
// hemisphere around the unit normal N. It builds its own tangent frame
// from N via CoordinateSystem.
func SampleCosineHemisphere(n Vec3, u Vec2) Vec3 {
	t, b := CoordinateSystem(n)
	cosTheta := math.Sqrt(u.X)
	sinTheta := math.Sqrt(1 - u.X)
	phi := 2 * math.Pi * u.Y
	return t.Multiply(sinTheta * math.Cos(phi)).
		Add(b.Multiply(sinTheta * math.Sin(phi))).
		Add(n.Multiply(cosTheta))
}

// CosineHemispherePDF returns the PDF of SampleCosineHemisphere for a
// direction omega relative to normal n: max(N·ω, 0)/π.
func CosineHemispherePDF(n, omega Vec3) float64 {
	cosTheta := n.Dot(omega)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SampleUniformDisk draws a point uniformly on the unit disk via polar
// coordinates, returned as (x, y).
func SampleUniformDisk(u Vec2) (x, y float64) {
	r := math.Sqrt(u.X)
	theta := 2 * math.Pi * u.Y
	return r * math.Cos(theta), r * math.Sin(theta)
}

// SampleGGXVNDF samples the distribution of visible normals for the GGX
// microfacet distribution, in a local shading frame where N = +Z, given
// the view direction v (also in local space) and isotropic roughness
// alpha, via the stretch/disk/unstretch construction. The result never
// points into the surface the way naive normal sampling can.
func SampleGGXVNDF(v Vec3, alpha float64, u Vec2) Vec3 {
	// Stretch the view vector so the distribution becomes isotropic
	// hemispherical.
	vStretched := Vec3{X: alpha * v.X, Y: alpha * v.Y, Z: v.Z}.Normalize()

	// Build an orthonormal basis in the plane orthogonal to vStretched.
	var t1 Vec3
	if vStretched.Z < 0.99999 {
		t1 = Vec3{X: 0, Y: 0, Z: 1}.Cross(vStretched).Normalize()
	} else {
		t1 = Vec3{X: 1, Y: 0, Z: 0}
	}
	t2 := vStretched.Cross(t1)

	// Sample a disk, splitting phi to account for the hemisphere cap
	// being offset by vStretched.Z.
	r := math.Sqrt(u.X)
	a := 1.0 / (1.0 + vStretched.Z)
	var phi float64
	if u.Y < a {
		phi = (u.Y / a) * math.Pi
	} else {
		phi = math.Pi + (u.Y-a)/(1-a)*math.Pi
	}
	p1 := r * math.Cos(phi)
	p2 := r * math.Sin(phi)
	if u.Y >= a {
		p2 *= vStretched.Z
	}

	hStretched := t1.Multiply(p1).Add(t2.Multiply(p2)).
		Add(vStretched.Multiply(math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))))

	// Unstretch back to the ellipsoid configuration.
	h := Vec3{X: alpha * hStretched.X, Y: alpha * hStretched.Y, Z: math.Max(0, hStretched.Z)}
	return h.Normalize()
}
