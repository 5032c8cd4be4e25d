package bsdf

import (
	"math"

	"github.com/kjhartman/lumenpath/pkg/core"
)

// RefractionIndexSetting holds the refractive-index triple (Nt, Kt, Ni)
// a Fresnel term is derived from. Nt/Ni are the transmitted/incident
// indices of refraction; Kt is the extinction coefficient (zero for
// dielectrics, non-zero for conductors).
type RefractionIndexSetting struct {
	Nt, Kt, Ni float64
	R0         core.Spectrum
}

// NewDielectricFresnel builds a RefractionIndexSetting for a dielectric
// (Kt=0) interface, deriving R0 = ((Nt-Ni)/(Nt+Ni))².
func NewDielectricFresnel(nt, ni float64) RefractionIndexSetting {
	r := (nt - ni) / (nt + ni)
	r0 := r * r
	return RefractionIndexSetting{Nt: nt, Ni: ni, R0: core.Vec3{X: r0, Y: r0, Z: r0}}
}

// NewConductorFresnel builds a RefractionIndexSetting for a conductor
// interface, deriving R0 = ((Nt-Ni)² + Kt²) / ((Nt+Ni)² + Kt²).
func NewConductorFresnel(nt, kt, ni float64) RefractionIndexSetting {
	num := (nt-ni)*(nt-ni) + kt*kt
	den := (nt+ni)*(nt+ni) + kt*kt
	r0 := num / den
	return RefractionIndexSetting{Nt: nt, Kt: kt, Ni: ni, R0: core.Vec3{X: r0, Y: r0, Z: r0}}
}

// NewFresnelFromR0 builds a RefractionIndexSetting directly from a
// (possibly spectrally-varying) normal-incidence reflectance, used by
// materials that specify R0 as a color (e.g. colored metals) rather
// than an index of refraction.
func NewFresnelFromR0(r0 core.Spectrum) RefractionIndexSetting {
	return RefractionIndexSetting{R0: r0}
}

// Schlick evaluates the Schlick Fresnel approximation at the given
// cosine of the angle between the half-vector and the outgoing
// direction:
//
//	F(c) = R0 + (1 − R0)(1−c)⁵
func (s RefractionIndexSetting) Schlick(cosine float64) core.Spectrum {
	c := math.Max(0, math.Min(1, cosine))
	t := math.Pow(1-c, 5)
	return core.Vec3{
		X: s.R0.X + (1-s.R0.X)*t,
		Y: s.R0.Y + (1-s.R0.Y)*t,
		Z: s.R0.Z + (1-s.R0.Z)*t,
	}
}
