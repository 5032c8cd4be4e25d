package bsdf

// Mask is the immutable category bitset carried by every BSDF component.
type Mask uint8

const (
	// Diffuse marks a component sampled over the full hemisphere with a
	// smooth (non-delta) lobe.
	Diffuse Mask = 1 << iota
	// Specular marks a glossy or mirror-like component sampled via a
	// microfacet or delta distribution.
	Specular
	// Reflection marks a component whose sampled direction is a
	// specular reflection step; gates direct-light sampling and MIS in
	// the integrator.
	Reflection
	// Mirror marks a near-delta specular component (α ≤ 0.05).
	Mirror
)

// Has reports whether the mask contains all bits of other.
func (m Mask) Has(other Mask) bool {
	return m&other == other
}
