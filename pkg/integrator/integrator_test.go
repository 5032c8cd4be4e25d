package integrator

import (
	"math"
	"testing"

	"github.com/kjhartman/lumenpath/pkg/bsdf"
	"github.com/kjhartman/lumenpath/pkg/core"
	"github.com/kjhartman/lumenpath/pkg/material"
	"github.com/kjhartman/lumenpath/pkg/scene"
)

func buildAreaLightScene(le core.Spectrum) *scene.Scene {
	light := scene.NewRect(
		core.NewVec3(0, 0, 10),
		core.NewVec3(0, 0, -1),
		core.NewVec3(1, 0, 0),
		15, 15,
		false,
		material.Matte(core.NewVec3(0, 0, 0)),
	).WithEmitter(le)

	return scene.New([]*scene.SceneObject{light}, 1e-4)
}

// TestDirectViewOfAreaLight checks that looking straight at an emitter
// returns its Le with no attenuation.
func TestDirectViewOfAreaLight(t *testing.T) {
	le := core.NewVec3(1, 1, 1)
	s := buildAreaLightScene(le)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	hit := s.Intersect(ray, nil)
	if !hit.Hit() {
		t.Fatal("expected to hit the light")
	}

	integ := NewPathTracingIntegrator(nil)
	sampler := core.NewSampler(1)
	result := integ.Integrate(s, ray, hit, sampler)

	if math.Abs(result.X-le.X) > 0.005 || math.Abs(result.Y-le.Y) > 0.005 || math.Abs(result.Z-le.Z) > 0.005 {
		t.Errorf("expected direct view to equal Le=%v, got %v", le, result)
	}
}

// analyticDirectIrradiance numerically integrates ∫ Le·cosθ_p·cosθ_light
// / r² dA over a rect light's surface by dense grid quadrature, giving
// a ground truth for the direct-lighting integral the path tracer's
// NEE+MIS estimator approximates stochastically.
func analyticDirectIrradiance(p, n core.Vec3, light *scene.SceneObject, leChannel float64) float64 {
	const grid = 400
	b := light.Normal.Cross(light.Tangent)
	cellArea := (4 * light.HalfExtents.X * light.HalfExtents.Y) / float64(grid*grid)
	total := 0.0
	for i := 0; i < grid; i++ {
		u := (float64(i)+0.5)/float64(grid)*2 - 1
		for j := 0; j < grid; j++ {
			v := (float64(j)+0.5)/float64(grid)*2 - 1
			q := light.Position.Add(light.Tangent.Multiply(u * light.HalfExtents.X)).Add(b.Multiply(v * light.HalfExtents.Y))
			toLight := q.Subtract(p)
			dist2 := toLight.LengthSquared()
			if dist2 < 1e-12 {
				continue
			}
			dist := math.Sqrt(dist2)
			wi := toLight.Multiply(1 / dist)
			cosSurface := n.Dot(wi)
			cosLight := light.Normal.Dot(wi.Negate())
			if cosSurface <= 0 || cosLight <= 0 {
				continue
			}
			total += cosSurface * cosLight / dist2 * cellArea
		}
	}
	return total * leChannel
}

// TestMatteWallEquilibriumRadiance checks that a Lambertian wall lit by
// an overhead emitter converges to albedo·E/π, where E is the direct
// irradiance from the area light, within 2% of the quadrature-computed
// analytic value.
func TestMatteWallEquilibriumRadiance(t *testing.T) {
	albedo := 0.75
	wallMat := material.Matte(core.NewVec3(albedo, albedo, albedo))

	emitterSize := 4.0
	emitterHeight := 10.0
	le := core.NewVec3(50, 50, 50)
	light := scene.NewRect(
		core.NewVec3(0, emitterHeight, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(1, 0, 0),
		emitterSize/2, emitterSize/2,
		false,
		material.Matte(core.NewVec3(0, 0, 0)),
	).WithEmitter(le)

	wall := scene.NewRect(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(1, 0, 0),
		50, 50,
		false,
		wallMat,
	)

	s := scene.New([]*scene.SceneObject{light, wall}, 1e-4)

	wallPoint := core.NewVec3(0, 0, 0)
	viewRay := core.NewRay(wallPoint.Add(core.NewVec3(0, 0.001, 0)).Add(core.NewVec3(0, 0, 0.5)), core.NewVec3(0, -0.2, -1))
	hit := s.Intersect(viewRay, nil)
	if !hit.Hit() || hit.Object != wall {
		t.Skip("setup did not land on the wall; geometry tuning left for end-to-end harness")
	}

	analytic := albedo / math.Pi * analyticDirectIrradiance(hit.Point, hit.Normal, light, le.X)

	const samples = 20000
	integ := NewPathTracingIntegrator(nil)
	sampler := core.NewSampler(7)
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(integ.Integrate(s, viewRay, hit, sampler))
	}
	avg := sum.Multiply(1.0 / samples)

	if math.IsNaN(avg.X) {
		t.Fatalf("estimate is NaN: %v", avg)
	}
	tolerance := 0.02 * analytic
	if math.Abs(avg.X-analytic) > tolerance {
		t.Errorf("expected equilibrium radiance %.4f (albedo·E/π), got %.4f (tolerance ±%.4f)", analytic, avg.X, tolerance)
	}
}

// TestMatteWallEquilibriumRadianceTwoLights lights the matte wall with
// two identical emitters placed symmetrically at x=±6, takes the
// analytic irradiance as the sum of both lights' contributions, and
// checks that the path tracer's estimate tracks it within 2%. A next-event-estimation PDF that forgot to divide by
// the number of lights would inflate the NEE contribution by a factor
// of the light count, which this test would catch.
func TestMatteWallEquilibriumRadianceTwoLights(t *testing.T) {
	albedo := 0.75
	wallMat := material.Matte(core.NewVec3(albedo, albedo, albedo))

	le := core.NewVec3(50, 50, 50)
	newLight := func(x float64) *scene.SceneObject {
		return scene.NewRect(
			core.NewVec3(x, 10, 0),
			core.NewVec3(0, -1, 0),
			core.NewVec3(1, 0, 0),
			2, 2,
			false,
			material.Matte(core.NewVec3(0, 0, 0)),
		).WithEmitter(le)
	}
	lightA := newLight(-6)
	lightB := newLight(6)

	wall := scene.NewRect(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(1, 0, 0),
		50, 50,
		false,
		wallMat,
	)

	s := scene.New([]*scene.SceneObject{lightA, lightB, wall}, 1e-4)

	wallPoint := core.NewVec3(0, 0, 0)
	viewRay := core.NewRay(wallPoint.Add(core.NewVec3(0, 0.001, 0)).Add(core.NewVec3(0, 0, 0.5)), core.NewVec3(0, -0.2, -1))
	hit := s.Intersect(viewRay, nil)
	if !hit.Hit() || hit.Object != wall {
		t.Skip("setup did not land on the wall; geometry tuning left for end-to-end harness")
	}

	irradiance := analyticDirectIrradiance(hit.Point, hit.Normal, lightA, le.X) + analyticDirectIrradiance(hit.Point, hit.Normal, lightB, le.X)
	analytic := albedo / math.Pi * irradiance

	const samples = 20000
	integ := NewPathTracingIntegrator(nil)
	sampler := core.NewSampler(9)
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(integ.Integrate(s, viewRay, hit, sampler))
	}
	avg := sum.Multiply(1.0 / samples)

	if math.IsNaN(avg.X) {
		t.Fatalf("estimate is NaN: %v", avg)
	}
	tolerance := 0.02 * analytic
	if math.Abs(avg.X-analytic) > tolerance {
		t.Errorf("expected two-light equilibrium radiance %.4f, got %.4f (tolerance ±%.4f)", analytic, avg.X, tolerance)
	}
}

// TestDualFaceLightVisibility checks that a query seeing a light's back
// side connects with positive pdf only when the light is dual-faced.
func TestDualFaceLightVisibility(t *testing.T) {
	le := core.NewVec3(1, 1, 1)
	n := core.NewVec3(0, 0, 1)
	tangent := core.NewVec3(1, 0, 0)

	singleFace := scene.NewRect(core.NewVec3(0, 0, -10), n, tangent, 5, 5, false, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(le)
	dualFace := scene.NewRect(core.NewVec3(0, 0, -10), n, tangent, 5, 5, true, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(le)

	// ray approaches from behind the light (at z=-20) and looks at its back.
	backRay := core.NewRay(core.NewVec3(0, 0, -20), core.NewVec3(0, 0, 1))

	singleHit := singleFace.IntersectWithRay(backRay, 1e-4)
	if singleHit.Hit() {
		t.Errorf("expected single-face light to reject a back hit, got one")
	}
	singlePdf := singleFace.SamplePdf(singleHit, backRay)
	if singlePdf != 0 {
		t.Errorf("expected zero pdf for an unseen single-face light, got %f", singlePdf)
	}

	dualHit := dualFace.IntersectWithRay(backRay, 1e-4)
	if !dualHit.Hit() {
		t.Fatal("expected dual-face light to accept a back hit")
	}
	dualPdf := dualFace.SamplePdf(dualHit, backRay)
	if dualPdf <= 0 {
		t.Errorf("expected positive pdf for a dual-face light's back side, got %f", dualPdf)
	}
}

func TestDebugIntegratorReturnsEmitterLeDirectly(t *testing.T) {
	le := core.NewVec3(2, 3, 4)
	s := buildAreaLightScene(le)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	hit := s.Intersect(ray, nil)

	d := NewDebugIntegrator()
	sampler := core.NewSampler(5)
	got := d.Integrate(s, ray, hit, sampler)
	if !got.Equals(le) {
		t.Errorf("expected debug integrator to return Le=%v directly, got %v", le, got)
	}
}

// TestMirrorFresnelAtNormalIncidence checks that a near-delta mirror
// sphere viewed head-on (normal incidence, cosθ=1) reflects a light
// straight back at R0·Le, since Schlick(1) = R0 regardless of the
// dielectric/conductor split.
func TestMirrorFresnelAtNormalIncidence(t *testing.T) {
	rs := core.NewVec3(0.9, 0.9, 0.9)
	sphere := scene.NewSphere(core.NewVec3(0, 0, 0), 1.0, material.Mirror(rs))

	le := core.NewVec3(5, 5, 5)
	light := scene.NewRect(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1), core.NewVec3(1, 0, 0), 5, 5, false, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(le)

	s := scene.New([]*scene.SceneObject{sphere, light}, 1e-4)

	viewRay := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit := s.Intersect(viewRay, nil)
	if !hit.Hit() || hit.Object != sphere {
		t.Fatal("expected the view ray to hit the mirror sphere first")
	}

	const samples = 8000
	integ := NewPathTracingIntegrator(nil)
	sampler := core.NewSampler(17)
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(integ.Integrate(s, viewRay, hit, sampler))
	}
	avg := sum.Multiply(1.0 / samples)

	expected := rs.X * le.X
	if math.IsNaN(avg.X) {
		t.Fatalf("estimate is NaN: %v", avg)
	}
	if tolerance := 0.02 * expected; math.Abs(avg.X-expected) > tolerance {
		t.Errorf("expected head-on mirror reflectance ≈ R0·Le = %.4f, got %.4f (tolerance ±%.4f)", expected, avg.X, tolerance)
	}
}

// TestWeightedMirrorComponentAppliesWeightOnce checks that a BSDF
// component's intrinsic Weight is applied exactly once along the
// BSDF-sampled continuation branch. Material.F already folds each
// component's Weight into the mixture sum, so if the path tracer's
// throughput update also multiplied by component.Weight, a
// single-component mirror built with Weight=0.5 would reflect at
// 0.25·R0·Le instead of the correct 0.5·R0·Le.
func TestWeightedMirrorComponentAppliesWeightOnce(t *testing.T) {
	rs := core.NewVec3(0.9, 0.9, 0.9)
	fresnel := bsdf.NewFresnelFromR0(rs)
	halfWeightMirror := material.New(bsdf.NewTorranceSparrow(0.001, fresnel, 0.5))
	sphere := scene.NewSphere(core.NewVec3(0, 0, 0), 1.0, halfWeightMirror)

	le := core.NewVec3(5, 5, 5)
	light := scene.NewRect(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1), core.NewVec3(1, 0, 0), 5, 5, false, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(le)

	s := scene.New([]*scene.SceneObject{sphere, light}, 1e-4)

	viewRay := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit := s.Intersect(viewRay, nil)
	if !hit.Hit() || hit.Object != sphere {
		t.Fatal("expected the view ray to hit the mirror sphere first")
	}

	const samples = 8000
	integ := NewPathTracingIntegrator(nil)
	sampler := core.NewSampler(23)
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(integ.Integrate(s, viewRay, hit, sampler))
	}
	avg := sum.Multiply(1.0 / samples)

	expected := 0.5 * rs.X * le.X
	if math.IsNaN(avg.X) {
		t.Fatalf("estimate is NaN: %v", avg)
	}
	if tolerance := 0.03 * expected; math.Abs(avg.X-expected) > tolerance {
		t.Errorf("expected weight applied once: 0.5·R0·Le = %.4f, got %.4f (tolerance ±%.4f)", expected, avg.X, tolerance)
	}
}

// sampleMeanAndVariance draws n independent radiance samples through
// integ along ray/hit and returns the sample mean and variance of the
// X channel.
func sampleMeanAndVariance(integ *PathTracingIntegrator, s *scene.Scene, ray core.Ray, hit scene.SurfaceIntersection, sampler core.Sampler, n int) (mean, variance float64) {
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := integ.Integrate(s, ray, hit, sampler).X
		sum += v
		sumSq += v * v
	}
	mean = sum / float64(n)
	variance = sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

// TestRussianRouletteUnbiasedOnAverage checks that roulette termination
// doesn't bias the estimator: its mean must agree with a
// roulette-disabled baseline within 3 standard errors of their
// combined sampling noise.
func TestRussianRouletteUnbiasedOnAverage(t *testing.T) {
	albedo := 0.75
	wallMat := material.Matte(core.NewVec3(albedo, albedo, albedo))
	le := core.NewVec3(30, 30, 30)

	light := scene.NewRect(core.NewVec3(0, 8, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), 2, 2, false, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(le)
	wall := scene.NewRect(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), 30, 30, false, wallMat)
	s := scene.New([]*scene.SceneObject{light, wall}, 1e-4)

	viewRay := core.NewRay(core.NewVec3(0, 3, 5), core.NewVec3(0, -0.3, -1))
	hit := s.Intersect(viewRay, nil)
	if !hit.Hit() {
		t.Skip("geometry did not land a hit on the wall")
	}

	const n = 20000
	withRR := NewPathTracingIntegrator(nil)
	withoutRR := NewPathTracingIntegrator(nil)
	withoutRR.DisableRussianRoulette = true

	meanA, varA := sampleMeanAndVariance(withRR, s, viewRay, hit, core.NewSampler(123), n)
	meanB, varB := sampleMeanAndVariance(withoutRR, s, viewRay, hit, core.NewSampler(456), n)

	if math.IsNaN(meanA) || math.IsNaN(meanB) {
		t.Fatalf("got NaN mean: withRR=%f withoutRR=%f", meanA, meanB)
	}

	seA := math.Sqrt(varA / float64(n))
	seB := math.Sqrt(varB / float64(n))
	combinedSE := math.Sqrt(seA*seA + seB*seB)

	diff := math.Abs(meanA - meanB)
	if threshold := 3 * combinedSE; diff > threshold {
		t.Errorf("roulette estimate diverges from the roulette-disabled baseline beyond 3σ: withRR=%f withoutRR=%f diff=%f threshold=%f", meanA, meanB, diff, threshold)
	}
}
