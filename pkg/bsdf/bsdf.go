package bsdf

import (
	"math"

	"github.com/kjhartman/lumenpath/pkg/core"
)

// Kind tags which closed-form BSDF a BSDF value represents. The BSDF
// library is a tagged variant dispatched by switch rather than a
// polymorphic class hierarchy: one struct, one Kind enum, no
// interface-per-variant.
type Kind int

const (
	KindLambertian Kind = iota
	KindOrenNayar
	KindTorranceSparrow
	KindAshikhminDiffuse
	KindAshikhminSpecular
	KindAshikhminCombined
)

// BSDF is a value object (immutable after construction),
// holding one closed-form scattering model plus the parameters it
// needs. Only the fields relevant to Kind are populated; Material owns
// an arena (plain slice) of these by value, never by pointer, so
// copying a Material is a deep copy for free.
type BSDF struct {
	Kind Kind
	Mask Mask
	// Weight is this component's intrinsic contribution to the
	// enclosing Material mixture.
	Weight float64

	// Albedo is ρ for Lambertian/OrenNayar, Rd for Ashikhmin diffuse.
	Albedo core.Spectrum

	// Sigma is the Oren-Nayar roughness in radians; A/B are the
	// derived coefficients cached at construction.
	Sigma  float64
	ornA   float64
	ornB   float64

	// Alpha is the GGX roughness-squared term (α = roughness²) used by
	// TorranceSparrow and the Ashikhmin specular lobe.
	Alpha float64

	// Fresnel derives R0 for the Schlick term; Rs is the specular
	// reflectance used directly by the Ashikhmin diffuse term's
	// (1-Rs) factor.
	Fresnel RefractionIndexSetting
	Rs      core.Spectrum
}

// NewLambertian builds a Lambertian BSDF with reflectance albedo.
func NewLambertian(albedo core.Spectrum, weight float64) BSDF {
	return BSDF{Kind: KindLambertian, Mask: Diffuse, Weight: weight, Albedo: albedo}
}

// NewOrenNayar builds an Oren-Nayar BSDF with reflectance albedo and
// roughness sigma (radians). sigma=0 reduces exactly to Lambertian
// (A=1, B=0).
func NewOrenNayar(albedo core.Spectrum, sigma, weight float64) BSDF {
	s2 := sigma * sigma
	a := 1 - 0.5*s2/(s2+0.33)
	b := 0.45 * s2 / (s2 + 0.09)
	return BSDF{Kind: KindOrenNayar, Mask: Diffuse, Weight: weight, Albedo: albedo, Sigma: sigma, ornA: a, ornB: b}
}

// NewTorranceSparrow builds a microfacet (GGX) BSDF with the given
// roughness in [0,1] and Fresnel term. Mask gains Mirror when the
// derived alpha is small enough to behave like a perfect mirror.
func NewTorranceSparrow(roughness float64, fresnel RefractionIndexSetting, weight float64) BSDF {
	alpha := roughness * roughness
	mask := Specular | Reflection
	if alpha <= 0.05 {
		mask |= Mirror
	}
	return BSDF{Kind: KindTorranceSparrow, Mask: mask, Weight: weight, Alpha: alpha, Fresnel: fresnel}
}

// NewAshikhminDiffuse builds the diffuse-only Ashikhmin-Shirley lobe.
func NewAshikhminDiffuse(rd, rs core.Spectrum, weight float64) BSDF {
	return BSDF{Kind: KindAshikhminDiffuse, Mask: Diffuse, Weight: weight, Albedo: rd, Rs: rs}
}

// NewAshikhminSpecular builds the specular-only Ashikhmin-Shirley lobe.
func NewAshikhminSpecular(roughness float64, rs core.Spectrum, weight float64) BSDF {
	return BSDF{Kind: KindAshikhminSpecular, Mask: Specular | Reflection, Weight: weight, Alpha: roughness * roughness, Rs: rs}
}

// NewAshikhminCombined builds the combined diffuse+specular
// Ashikhmin-Shirley BSDF, splitting its own internal sampling decision
// 50/50 between the two strategies.
func NewAshikhminCombined(roughness float64, rd, rs core.Spectrum, weight float64) BSDF {
	return BSDF{Kind: KindAshikhminCombined, Mask: Diffuse | Specular | Reflection, Weight: weight, Alpha: roughness * roughness, Albedo: rd, Rs: rs}
}

// localFrame transforms a world-space vector into the local shading
// frame where N=+Z, given the frame's tangent t and bitangent b.
func localFrame(n, t, b, v core.Vec3) core.Vec3 {
	return core.Vec3{X: t.Dot(v), Y: b.Dot(v), Z: n.Dot(v)}
}

// worldFrame is the inverse of localFrame.
func worldFrame(n, t, b, v core.Vec3) core.Vec3 {
	return t.Multiply(v.X).Add(b.Multiply(v.Y)).Add(n.Multiply(v.Z))
}

// F evaluates the BSDF's reflectance density for the pair (ωo, ωi) in
// world space, given the shading normal N and tangent T.
func (d BSDF) F(n, t, wo, wi core.Vec3) core.Spectrum {
	b := n.Cross(t)
	switch d.Kind {
	case KindLambertian:
		if wi.Dot(n) < 0 {
			return core.Vec3{}
		}
		return d.Albedo.Multiply(1.0 / math.Pi)

	case KindOrenNayar:
		return d.orenNayarF(n, wo, wi)

	case KindTorranceSparrow:
		return d.torranceSparrowF(n, wo, wi)

	case KindAshikhminDiffuse:
		return ashikhminDiffuseTerm(n, wo, wi, d.Albedo, d.Rs)

	case KindAshikhminSpecular:
		h := wo.Add(wi)
		if h.LengthSquared() < 1e-16 {
			return core.Vec3{}
		}
		h = h.Normalize()
		return ashikhminSpecularTerm(n, h, wo, wi, d.Alpha, d.Rs)

	case KindAshikhminCombined:
		diff := ashikhminDiffuseTerm(n, wo, wi, d.Albedo, d.Rs)
		h := wo.Add(wi)
		if h.LengthSquared() < 1e-16 {
			return diff
		}
		h = h.Normalize()
		spec := ashikhminSpecularTerm(n, h, wo, wi, d.Alpha, d.Rs)
		return diff.Add(spec)
	}
	_ = b
	return core.Vec3{}
}

// PDF returns the probability density of the direction ωi, given ωo.
// For the diffuse kinds this is the cosine-hemisphere density that
// SampleWi draws from. For the microfacet lobes it is
// D(N·H)·(N·H)/(4·(H·ωo)), the density of a half-vector drawn in
// proportion to D·(N·H); SampleWi draws the half-vector from the
// visible-normal distribution instead, so for those lobes the returned
// value is not the exact density of SampleWi's output.
func (d BSDF) PDF(n, t, wo, wi core.Vec3) float64 {
	switch d.Kind {
	case KindLambertian, KindOrenNayar:
		return core.CosineHemispherePDF(n, wi)

	case KindTorranceSparrow:
		h := wo.Add(wi)
		if h.LengthSquared() < 1e-16 {
			return 0
		}
		h = h.Normalize()
		nDotH := n.Dot(h)
		hDotWo := h.Dot(wo)
		if hDotWo <= 0 {
			return 0
		}
		return DistributionGGX(nDotH, d.Alpha) * nDotH / (4 * hDotWo)

	case KindAshikhminDiffuse:
		return core.CosineHemispherePDF(n, wi)

	case KindAshikhminSpecular:
		return d.specularPDF(n, wo, wi)

	case KindAshikhminCombined:
		diffusePDF := core.CosineHemispherePDF(n, wi)
		specPDF := d.specularPDF(n, wo, wi)
		return 0.5 * (diffusePDF + specPDF)
	}
	return 0
}

func (d BSDF) specularPDF(n, wo, wi core.Vec3) float64 {
	h := wo.Add(wi)
	if h.LengthSquared() < 1e-16 {
		return 0
	}
	h = h.Normalize()
	nDotH := n.Dot(h)
	hDotWo := h.Dot(wo)
	if hDotWo <= 0 {
		return 0
	}
	return DistributionGGX(nDotH, d.Alpha) * nDotH / (4 * hDotWo)
}

// SampleWi importance-samples an incident direction for this BSDF,
// drawing exactly three fresh dimensions from sampler so callers can
// treat the draw count as fixed regardless of Kind. It returns the
// sampled direction and the Mask bits this
// particular sample carries (sampleMask may differ from d.Mask for the
// combined Ashikhmin strategy, which reports which lobe fired).
func (d BSDF) SampleWi(sampler core.Sampler, n, t, wo core.Vec3) (wi core.Vec3, sampleMask Mask) {
	b := n.Cross(t)
	switch d.Kind {
	case KindLambertian, KindOrenNayar:
		u := sampler.Get2D()
		_ = sampler.Get1D() // keep to exactly three draws
		return core.SampleCosineHemisphere(n, u), d.Mask

	case KindTorranceSparrow:
		return d.sampleMicrofacet(sampler, n, t, b, wo)

	case KindAshikhminDiffuse:
		u := sampler.Get2D()
		_ = sampler.Get1D()
		return core.SampleCosineHemisphere(n, u), d.Mask

	case KindAshikhminSpecular:
		wi, _ := d.sampleMicrofacetAlpha(sampler, n, t, b, wo, d.Alpha)
		return wi, d.Mask

	case KindAshikhminCombined:
		u0 := sampler.Get1D()
		u := sampler.Get2D()
		if u0 < 0.5 {
			return core.SampleCosineHemisphere(n, u), Diffuse
		}
		local := localFrame(n, t, b, wo)
		h := core.SampleGGXVNDF(local, math.Max(d.Alpha, 1e-6), u)
		hWorld := worldFrame(n, t, b, h).Normalize()
		reflected := hWorld.Multiply(2 * wo.Dot(hWorld)).Subtract(wo)
		return reflected, Specular | Reflection
	}
	return wo, 0
}

func (d BSDF) sampleMicrofacet(sampler core.Sampler, n, t, b, wo core.Vec3) (core.Vec3, Mask) {
	wi, _ := d.sampleMicrofacetAlpha(sampler, n, t, b, wo, d.Alpha)
	return wi, d.Mask
}

// sampleMicrofacetAlpha implements GGX VNDF half-vector
// sample, reflected into an incident direction.
func (d BSDF) sampleMicrofacetAlpha(sampler core.Sampler, n, t, b, wo core.Vec3, alpha float64) (core.Vec3, core.Vec3) {
	u := sampler.Get2D()
	_ = sampler.Get1D() // three draws total
	localWo := localFrame(n, t, b, wo)
	// GGX VNDF sampling assumes the view direction is in the upper
	// hemisphere of the local frame.
	flip := false
	if localWo.Z < 0 {
		localWo = localWo.Negate()
		flip = true
	}
	h := core.SampleGGXVNDF(localWo, math.Max(alpha, 1e-6), u)
	if flip {
		h = h.Negate()
	}
	hWorld := worldFrame(n, t, b, h).Normalize()
	wi := hWorld.Multiply(2 * wo.Dot(hWorld)).Subtract(wo)
	return wi, hWorld
}

func (d BSDF) orenNayarF(n, wo, wi core.Vec3) core.Spectrum {
	cosThetaI := n.Dot(wi)
	cosThetaO := n.Dot(wo)
	if cosThetaI <= 0 || cosThetaO <= 0 {
		return core.Vec3{}
	}
	// max(0, cos(φi−φo))·sinα·sinβ collapses to max(0, ωi·ωo −
	// cosθi·cosθo); dividing by cosβ = max(cosθi,cosθo) yields
	// max(0,cos(φi−φo))·sinα·tanβ directly.
	t := math.Max(0, wi.Dot(wo)-cosThetaI*cosThetaO)
	cosBeta := math.Max(cosThetaI, cosThetaO)
	var term float64
	if cosBeta > 1e-6 {
		term = t / cosBeta
	}
	return d.Albedo.Multiply((d.ornA + d.ornB*term) / math.Pi)
}

func (d BSDF) torranceSparrowF(n, wo, wi core.Vec3) core.Spectrum {
	nDotWo := n.Dot(wo)
	nDotWi := n.Dot(wi)
	if nDotWo <= 0 || nDotWi <= 0 {
		return core.Vec3{}
	}
	h := wo.Add(wi)
	if h.LengthSquared() < 1e-16 {
		return core.Vec3{}
	}
	h = h.Normalize()
	nDotH := n.Dot(h)
	hDotWo := h.Dot(wo)
	dist := DistributionGGX(nDotH, d.Alpha)
	g := SmithG(nDotWo, nDotWi, d.Alpha)
	f := d.Fresnel.Schlick(hDotWo)
	denom := 4 * nDotWo * nDotWi
	return f.Multiply(dist * g / denom)
}

// ashikhminDiffuseTerm implements Ashikhmin-Shirley
// diffuse term: 28/(23π)·Rd·(1−Rs)·(1−(1−0.5 N·ωi)⁵)·(1−(1−0.5 N·ωo)⁵).
func ashikhminDiffuseTerm(n, wo, wi core.Vec3, rd, rs core.Spectrum) core.Spectrum {
	nDotWi := n.Dot(wi)
	nDotWo := n.Dot(wo)
	if nDotWi <= 0 || nDotWo <= 0 {
		return core.Vec3{}
	}
	fi := 1 - math.Pow(1-0.5*nDotWi, 5)
	fo := 1 - math.Pow(1-0.5*nDotWo, 5)
	scale := (28.0 / (23.0 * math.Pi)) * fi * fo
	oneMinusRs := core.Vec3{X: 1 - rs.X, Y: 1 - rs.Y, Z: 1 - rs.Z}
	return rd.MultiplyVec(oneMinusRs).Multiply(scale)
}

// ashikhminSpecularTerm implements Ashikhmin-Shirley
// specular term: D·F/(4·(H·ωi)·max(N·ωi, N·ωo)).
func ashikhminSpecularTerm(n, h, wo, wi core.Vec3, alpha float64, rs core.Spectrum) core.Spectrum {
	nDotWi := n.Dot(wi)
	nDotWo := n.Dot(wo)
	hDotWi := h.Dot(wi)
	if nDotWi <= 0 || nDotWo <= 0 || hDotWi <= 0 {
		return core.Vec3{}
	}
	nDotH := n.Dot(h)
	dist := DistributionGGX(nDotH, alpha)
	fresnel := NewFresnelFromR0(rs).Schlick(hDotWi)
	denom := 4 * hDotWi * math.Max(nDotWi, nDotWo)
	return fresnel.Multiply(dist / denom)
}
