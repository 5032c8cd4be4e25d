package integrator

import (
	"github.com/kjhartman/lumenpath/pkg/core"
	"github.com/kjhartman/lumenpath/pkg/scene"
)

// DebugIntegrator visualizes the sampled incident direction as a
// color rather than estimating radiance; it is a diagnostic tool, not
// part of the unbiased estimator. Grounded on the source's
// DebugIntegrator::EvaluateLi.
type DebugIntegrator struct{}

// NewDebugIntegrator builds a DebugIntegrator.
func NewDebugIntegrator() *DebugIntegrator {
	return &DebugIntegrator{}
}

// Integrate returns the hit emitter's Le directly, or remaps the first
// sampled BSDF direction into [0,1]³ as a color.
func (d *DebugIntegrator) Integrate(s *scene.Scene, cameraRay core.Ray, firstHit scene.SurfaceIntersection, sampler core.Sampler) core.Spectrum {
	if !firstHit.Hit() {
		return core.Vec3{}
	}

	if firstHit.Object.IsEmissive() {
		return firstHit.Object.Emitter.Le
	}

	n := firstHit.Normal
	_, tangent := core.CoordinateSystem(n)
	wo := cameraRay.Direction.Negate()
	mat := firstHit.Object.Material

	u0 := sampler.Get1D()
	component := mat.SampleComponent(u0)
	wi, _ := component.SampleWi(sampler, n, tangent, wo)

	if n.Dot(wi) <= 0 {
		return core.Vec3{}
	}

	return wi.Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5)).Clamp(0, 1)
}
