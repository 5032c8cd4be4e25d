package renderer

import (
	"runtime"
	"sync"

	"github.com/kjhartman/lumenpath/pkg/core"
	"github.com/kjhartman/lumenpath/pkg/integrator"
	"github.com/kjhartman/lumenpath/pkg/scene"
)

// pixelTask is one pixel's worth of sampling work for the worker pool.
type pixelTask struct {
	X, Y int
}

// Renderer drives the pixel-parallel rendering loop: Camera generates
// rays, the Integrator estimates radiance, and Film accumulates the
// result. Parallelism is over pixels; the scene is read-only once
// built, and each worker owns a private Sampler
type Renderer struct {
	Camera          *Camera
	Scene           *scene.Scene
	Integrator      integrator.Integrator
	Film            *Film
	SamplesPerPixel int
	NumWorkers      int
}

// NewRenderer builds a Renderer with a worker count defaulting to
// runtime.NumCPU() when numWorkers is unset.
func NewRenderer(camera *Camera, s *scene.Scene, integ integrator.Integrator, film *Film, samplesPerPixel, numWorkers int) *Renderer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Renderer{
		Camera:          camera,
		Scene:           s,
		Integrator:      integ,
		Film:            film,
		SamplesPerPixel: samplesPerPixel,
		NumWorkers:      numWorkers,
	}
}

// Render runs the full width×height×samplesPerPixel sweep across
// NumWorkers goroutines, each with its own entropy-seeded Sampler.
func (r *Renderer) Render() {
	tasks := make(chan pixelTask, r.Film.Width*r.Film.Height)
	for y := 0; y < r.Film.Height; y++ {
		for x := 0; x < r.Film.Width; x++ {
			tasks <- pixelTask{X: x, Y: y}
		}
	}
	close(tasks)

	var wg sync.WaitGroup
	for i := 0; i < r.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(tasks)
		}()
	}
	wg.Wait()
}

func (r *Renderer) worker(tasks <-chan pixelTask) {
	sampler := core.NewEntropySampler()
	for task := range tasks {
		r.renderPixel(task.X, task.Y, sampler)
	}
}

func (r *Renderer) renderPixel(x, y int, sampler core.Sampler) {
	idx := r.Film.PixelIndex(x, y)
	for s := 0; s < r.SamplesPerPixel; s++ {
		jitter := sampler.Get2D()
		jx := jitter.X - 0.5
		jy := jitter.Y - 0.5

		ray := r.Camera.RayThroughPixel(x, y, jx, jy)
		firstHit := r.Scene.Intersect(ray, nil)
		spectrum := r.Integrator.Integrate(r.Scene, ray, firstHit, sampler)

		if spectrum.HasNaN() {
			continue
		}

		r.Film.Accumulate(idx, spectrum)
		r.Film.IncreaseSampleCount(idx)
	}
}
