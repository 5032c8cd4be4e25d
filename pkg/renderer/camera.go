// Package renderer wires Camera ray generation, Film accumulation,
// and a worker pool together into the pixel-parallel rendering loop.
package renderer

import (
	"math"

	"github.com/kjhartman/lumenpath/pkg/core"
)

const (
	minFovDegrees = 1.0
	maxFovDegrees = 179.0
	unitsPerPixel = 0.1
)

// Camera is a pinhole camera parameterized by vertical field of view.
// It sits on -z, looking toward the origin.
type Camera struct {
	width, height int
	origin        core.Vec3
	halfWidth     float64
	halfHeight    float64
}

// NewCamera builds a pinhole Camera for a W×H canvas. fovDegrees is
// clamped to [1°,179°] at construction.
func NewCamera(width, height int, fovDegrees float64) *Camera {
	fov := math.Max(minFovDegrees, math.Min(maxFovDegrees, fovDegrees))
	fovRadians := fov * math.Pi / 180.0

	planeHeight := float64(height) * unitsPerPixel
	planeWidth := float64(width) * unitsPerPixel
	distance := (planeHeight / 2) / math.Tan(fovRadians/2)

	return &Camera{
		width:      width,
		height:     height,
		origin:     core.NewVec3(0, 0, -distance),
		halfWidth:  planeWidth / 2,
		halfHeight: planeHeight / 2,
	}
}

// RayThroughPixel builds a camera ray through pixel (px,py) with
// sub-pixel jitter (jx,jy) in [-0.5,0.5] pixel-units.
func (c *Camera) RayThroughPixel(px, py int, jx, jy float64) core.Ray {
	x := (float64(px)+0.5+jx)*unitsPerPixel - c.halfWidth
	y := c.halfHeight - (float64(py)+0.5+jy)*unitsPerPixel

	target := core.NewVec3(x, y, 0)
	return core.NewRayTo(c.origin, target)
}
