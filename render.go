package deepdream

import (
	"log"
	"time"
)

// Renderer turns images into dreams for a fixed oracle. It holds no state
// between calls beyond the shift generator.
type Renderer struct {
	Oracle GradientOracle
	// Shift overrides the tile shift source; nil seeds one from Options.Seed.
	Shift ShiftSource
	// Logger receives per-octave progress. Nil keeps the renderer silent.
	Logger *log.Logger
	// OnOctave receives a copy of the working image after each octave.
	OnOctave func(octave int, img *Image)
}

func NewRenderer(oracle GradientOracle) *Renderer {
	return &Renderer{Oracle: oracle}
}

func (r *Renderer) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// RenderNaive runs stddev-normalised ascent on the full image with direct
// oracle gradients, no tiling and no pyramid.
func (r *Renderer) RenderNaive(img *Image, obj Objective, opt NaiveOptions) (*Image, error) {
	start := time.Now()
	out, err := Ascend(img, obj, Direct{Oracle: r.Oracle}, opt.Iterations, opt.Step, NormStdDev)
	if err != nil {
		return nil, err
	}
	r.logf("naive size=%dx%d iters=%d elapsed=%s", img.W, img.H, opt.Iterations, time.Since(start).Round(time.Millisecond))
	return out, nil
}

// Render is the multi-scale renderer. The image is split into an octave
// pyramid; the coarsest level is dreamed first, then each finer level is
// upsampled, gets its residual detail back and is dreamed again.
func (r *Renderer) Render(img *Image, obj Objective, opt Options) (*Image, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	shift := r.Shift
	if shift == nil {
		shift = NewRandomShift(opt.Seed)
	}
	tiled := &TiledEvaluator{Oracle: r.Oracle, TileSize: opt.TileSize, Shift: shift, Workers: opt.Workers}

	pyr, err := Decompose(img, opt.Octaves, opt.OctaveScale)
	if err != nil {
		return nil, err
	}

	work := pyr.Base
	for octave := range pyr.NumOctaves() {
		start := time.Now()
		if octave > 0 {
			if work, err = upAndAdd(work, pyr.Residual(octave)); err != nil {
				return nil, err
			}
		}
		if work, err = Ascend(work, obj, tiled, opt.Iterations, opt.Step, NormMeanAbs); err != nil {
			return nil, err
		}
		r.logf("octave=%d/%d size=%dx%d elapsed=%s", octave+1, pyr.NumOctaves(), work.W, work.H, time.Since(start).Round(time.Millisecond))
		if r.OnOctave != nil {
			r.OnOctave(octave, work.Clone())
		}
	}
	return work, nil
}
