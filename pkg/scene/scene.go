package scene

import (
	"math"

	"github.com/kjhartman/lumenpath/pkg/core"
)

// Scene owns a collection of SceneObjects plus a derived, non-owning
// list of the emissive subset (SceneLights)
type Scene struct {
	Objects []*SceneObject
	Lights  []*SceneObject

	// Epsilon is the ray-origin offset used to avoid self-intersection
	// on intersection-derived rays.
	Epsilon float64
}

// New builds a Scene and derives its light list by filtering objects
// carrying an emitter.
func New(objects []*SceneObject, epsilon float64) *Scene {
	s := &Scene{Objects: objects, Epsilon: epsilon}
	for _, o := range objects {
		if o.IsEmissive() {
			s.Lights = append(s.Lights, o)
		}
	}
	return s
}

// Intersect performs a linear scan over every object, keeping the
// nearest hit with t ≥ ε, optionally excluding one object (used to
// avoid immediate self-reintersection).
func (s *Scene) Intersect(ray core.Ray, exclude *SceneObject) SurfaceIntersection {
	var closest SurfaceIntersection
	closestT := math.Inf(1)

	for _, obj := range s.Objects {
		if obj == exclude {
			continue
		}
		hit := obj.IntersectWithRay(ray, s.Epsilon)
		if hit.Hit() && hit.T < closestT {
			closest = hit
			closestT = hit.T
		}
	}
	return closest
}

// UniformSampleLight selects an emissive object uniformly at random.
// Returns nil when the scene has no lights.
func (s *Scene) UniformSampleLight(u float64) *SceneObject {
	n := len(s.Lights)
	if n == 0 {
		return nil
	}
	idx := int(u * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return s.Lights[idx]
}

// SampleLightPdf implements MIS support function:
// intersect every emitter with ray, take the nearest, and return its
// solid-angle sample_pdf divided by the number of lights. Returns 0
// when the ray hits no emitter.
func (s *Scene) SampleLightPdf(ray core.Ray) float64 {
	if len(s.Lights) == 0 {
		return 0
	}

	var closest SurfaceIntersection
	var closestObj *SceneObject
	closestT := math.Inf(1)

	for _, light := range s.Lights {
		hit := light.IntersectWithRay(ray, s.Epsilon)
		if hit.Hit() && hit.T < closestT {
			closest = hit
			closestObj = light
			closestT = hit.T
		}
	}

	if closestObj == nil {
		return 0
	}
	return closestObj.SamplePdf(closest, ray) / float64(len(s.Lights))
}
