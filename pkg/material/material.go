// Package material implements the BSDF mixture model: a Material owns
// an arena of bsdf.BSDF values and routes evaluation, PDF, and
// component selection across them.
package material

import (
	"github.com/kjhartman/lumenpath/pkg/bsdf"
	"github.com/kjhartman/lumenpath/pkg/core"
)

// Material is an ordered, non-empty mixture of BSDF components plus a
// summary mask (the bitwise OR of every component's mask). Components
// are stored by value in a plain slice — an arena, not owning pointers
// — so copying a Material is a deep copy for free and allocation stays
// local to the mixture.
type Material struct {
	Components []bsdf.BSDF
	Mask       bsdf.Mask
}

// New builds a Material from one or more BSDF components. At least
// one component is required.
func New(components ...bsdf.BSDF) Material {
	if len(components) == 0 {
		panic("material: at least one BSDF component is required")
	}
	var mask bsdf.Mask
	for _, c := range components {
		mask |= c.Mask
	}
	return Material{Components: components, Mask: mask}
}

// F evaluates Material.f = Σ w_k · f_k over all components.
func (m Material) F(n, t, wo, wi core.Vec3) core.Spectrum {
	sum := core.Vec3{}
	for _, c := range m.Components {
		sum = sum.Add(c.F(n, t, wo, wi).Multiply(c.Weight))
	}
	return sum
}

// PDF evaluates Material.pdf = (1/n) Σ pdf_k, the uniform average over
// components, matching the uniform component-selection policy.
func (m Material) PDF(n, t, wo, wi core.Vec3) float64 {
	sum := 0.0
	for _, c := range m.Components {
		sum += c.PDF(n, t, wo, wi)
	}
	return sum / float64(len(m.Components))
}

// SampleComponent selects a component uniformly: sample_component(u) =
// component[⌊u·n⌋]
func (m Material) SampleComponent(u float64) bsdf.BSDF {
	n := len(m.Components)
	idx := int(u * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return m.Components[idx]
}

// Matte builds a purely Lambertian material, grounded on
// Material::CreateMatte(albedo) in the source renderer.
func Matte(albedo core.Spectrum) Material {
	return New(bsdf.NewLambertian(albedo, 1.0))
}

// MatteRough builds an Oren-Nayar material with roughness sigma
// (radians), grounded on Material::CreateMatte(albedo, sigma).
func MatteRough(albedo core.Spectrum, sigma float64) Material {
	return New(bsdf.NewOrenNayar(albedo, sigma, 1.0))
}

// Plastic builds a Lambertian diffuse base with a microfacet GGX
// specular coat, grounded on Material::CreatePlastic.
func Plastic(albedo core.Spectrum, roughness float64, rs core.Spectrum) Material {
	fresnel := bsdf.NewFresnelFromR0(rs)
	return New(
		bsdf.NewLambertian(albedo, 1.0),
		bsdf.NewTorranceSparrow(roughness, fresnel, 1.0),
	)
}

// AshikhminShirley builds the two-component Ashikhmin-Shirley material
// (separate diffuse and specular lobes in the mixture, not the single
// combined BSDF kind), grounded on Material::CreateAshikhminAndShirley
// — the source keeps the combined variant commented out in favor of
// two mixture components.
func AshikhminShirley(roughness float64, rd, rs core.Spectrum) Material {
	return New(
		bsdf.NewAshikhminDiffuse(rd, rs, 1.0),
		bsdf.NewAshikhminSpecular(roughness, rs, 1.0),
	)
}

// Mirror builds a near-delta GGX material (α ≤ 0.05) with reflectance
// rs used as the Fresnel R0, for ideal-mirror surfaces.
func Mirror(rs core.Spectrum) Material {
	fresnel := bsdf.NewFresnelFromR0(rs)
	return New(bsdf.NewTorranceSparrow(0.001, fresnel, 1.0))
}

// Glass builds a dielectric microfacet material from an index of
// refraction, using the derived Schlick R0 rather than true
// transmission — refraction is out of scope.
func Glass(roughness, indexOfRefraction float64) Material {
	fresnel := bsdf.NewDielectricFresnel(indexOfRefraction, 1.0)
	return New(bsdf.NewTorranceSparrow(roughness, fresnel, 1.0))
}

// Metal builds a conductor microfacet material from (Nt, Kt, Ni),
// grounded on RefractionIndexSetting's conductor branch.
func Metal(roughness, nt, kt, ni float64) Material {
	fresnel := bsdf.NewConductorFresnel(nt, kt, ni)
	return New(bsdf.NewTorranceSparrow(roughness, fresnel, 1.0))
}

// GGXDebug builds a single-component microfacet material used by the
// debug visualization integrator, grounded on
// Material::CreateMicrofacetGGX_Debug.
func GGXDebug(roughness float64, rs core.Spectrum) Material {
	fresnel := bsdf.NewFresnelFromR0(rs)
	return New(bsdf.NewTorranceSparrow(roughness, fresnel, 1.0))
}
