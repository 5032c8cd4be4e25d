// Command render builds a small programmatic test scene and renders
// it to a PNG, exercising the path tracer core end to end.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/kjhartman/lumenpath/pkg/core"
	"github.com/kjhartman/lumenpath/pkg/integrator"
	"github.com/kjhartman/lumenpath/pkg/material"
	"github.com/kjhartman/lumenpath/pkg/renderer"
	"github.com/kjhartman/lumenpath/pkg/scene"
)

// Config holds the render's command-line configuration.
type Config struct {
	Width           int
	Height          int
	SamplesPerPixel int
	FovDegrees      float64
	NumWorkers      int
	IntegratorType  string
	Output          string
	CPUProfile      string
	Help            bool
}

func main() {
	config := parseFlags()
	if config.Help {
		showHelp()
		return
	}

	if config.CPUProfile != "" {
		f, err := os.Create(config.CPUProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Println("Rendering test scene...")
	start := time.Now()

	s := buildCornellBoxScene()
	camera := renderer.NewCamera(config.Width, config.Height, config.FovDegrees)
	film := renderer.NewFilm(config.Width, config.Height)
	integ := newIntegrator(config.IntegratorType)

	r := renderer.NewRenderer(camera, s, integ, film, config.SamplesPerPixel, config.NumWorkers)
	r.Render()

	if err := writePNG(film, config.Output); err != nil {
		log.Fatalf("could not write output: %v", err)
	}

	fmt.Printf("Render completed in %v, wrote %s\n", time.Since(start), config.Output)
}

func newIntegrator(kind string) integrator.Integrator {
	switch kind {
	case "debug":
		return integrator.NewDebugIntegrator()
	default:
		return integrator.NewPathTracingIntegrator(nil)
	}
}

func parseFlags() Config {
	config := Config{}
	flag.IntVar(&config.Width, "width", 400, "Image width in pixels")
	flag.IntVar(&config.Height, "height", 400, "Image height in pixels")
	flag.IntVar(&config.SamplesPerPixel, "spp", 64, "Samples per pixel")
	flag.Float64Var(&config.FovDegrees, "fov", 40, "Vertical field of view in degrees")
	flag.IntVar(&config.NumWorkers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.StringVar(&config.IntegratorType, "integrator", "path-tracing", "Integrator type: 'path-tracing' or 'debug'")
	flag.StringVar(&config.Output, "out", "render.png", "Output PNG path")
	flag.StringVar(&config.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.BoolVar(&config.Help, "help", false, "Show help information")
	flag.Parse()
	return config
}

func showHelp() {
	fmt.Println("render: renders a small Cornell-box-style test scene with the path tracer core")
	flag.PrintDefaults()
}

// buildCornellBoxScene assembles a minimal enclosed box with an
// overhead area light and a mix of matte, plastic and mirror
// materials, used to exercise the full integrator pipeline.
func buildCornellBoxScene() *scene.Scene {
	white := material.Matte(core.NewVec3(0.73, 0.73, 0.73))
	red := material.Matte(core.NewVec3(0.65, 0.05, 0.05))
	green := material.Matte(core.NewVec3(0.12, 0.45, 0.15))
	mirror := material.Mirror(core.NewVec3(0.95, 0.95, 0.95))
	plastic := material.Plastic(core.NewVec3(0.4, 0.4, 0.8), 0.2, core.NewVec3(0.04, 0.04, 0.04))

	size := 15.0
	objects := []*scene.SceneObject{
		scene.NewRect(core.NewVec3(0, -size, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), size, size, false, white),
		scene.NewRect(core.NewVec3(0, size, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), size, size, false, white),
		scene.NewRect(core.NewVec3(-size, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), size, size, false, red),
		scene.NewRect(core.NewVec3(size, 0, 0), core.NewVec3(-1, 0, 0), core.NewVec3(0, 0, 1), size, size, false, green),
		scene.NewRect(core.NewVec3(0, 0, size), core.NewVec3(0, 0, -1), core.NewVec3(1, 0, 0), size, size, false, white),
		scene.NewSphere(core.NewVec3(-6, -size+5, 5), 5, mirror),
		scene.NewSphere(core.NewVec3(6, -size+5, 8), 5, plastic),
		scene.NewRect(core.NewVec3(0, size-0.01, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), 5, 5, false, material.Matte(core.NewVec3(0, 0, 0))).WithEmitter(core.NewVec3(15, 15, 15)),
	}

	return scene.New(objects, 1e-4)
}

func writePNG(film *renderer.Film, path string) error {
	stride := film.Width * 3
	buf := make([]byte, stride*film.Height)
	film.Flush(buf, stride)

	img := image.NewRGBA(image.Rect(0, 0, film.Width, film.Height))
	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			base := y*stride + x*3
			b, g, r := buf[base], buf[base+1], buf[base+2]
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
