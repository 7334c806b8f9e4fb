package deepdream

import (
	"image"
	"math"
)

type Options struct {
	// Ascent steps per octave.
	// Ideal start: 10. More steps grow stronger patterns at each scale.
	Iterations int
	// Step size for the mean-abs normalised update.
	// Ideal start: 1.5 for images in 0-255 brightness.
	Step float64
	// Number of pyramid levels, base included.
	// Ideal start: 4. Each extra octave lets patterns grow larger relative to the image.
	Octaves int
	// Downscale ratio between neighbouring octaves. Must be > 1.
	// Ideal start: 1.4.
	OctaveScale float64
	// Tile edge in pixels for gradient evaluation.
	// Large tiles need more memory per oracle call; 512 suits most models.
	TileSize int
	// Concurrent tile evaluations. 0 or 1 runs tiles sequentially.
	Workers int
	// Seed for the tile shift generator.
	Seed uint64
}

func DefaultOptions() Options {
	return Options{
		Iterations:  10,
		Step:        1.5,
		Octaves:     4,
		OctaveScale: 1.4,
		TileSize:    512,
		Workers:     1,
	}
}

// OptionsFromSize adapts the defaults to an image size: small images get a
// single tile and fewer octaves so the base level keeps at least 16 pixels on
// its short side.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	short := float64(min(size.X, size.Y))
	octaves := 1
	for octaves < opt.Octaves && short/math.Pow(opt.OctaveScale, float64(octaves)) >= 16 {
		octaves++
	}
	opt.Octaves = octaves
	if long := max(size.X, size.Y); long <= opt.TileSize {
		opt.TileSize = long
	}
	return opt
}

// Validate rejects options a render cannot run with.
func (o Options) Validate() error {
	if o.Octaves < 1 {
		return invalid("octaves", o.Octaves)
	}
	if !(o.OctaveScale > 1) || math.IsInf(o.OctaveScale, 0) {
		return invalid("octave scale", o.OctaveScale)
	}
	if o.TileSize <= 0 {
		return invalid("tile size", o.TileSize)
	}
	if o.Iterations < 0 {
		return invalid("iterations", o.Iterations)
	}
	if math.IsNaN(o.Step) || math.IsInf(o.Step, 0) {
		return invalid("step", o.Step)
	}
	if o.Workers < 0 {
		return invalid("workers", o.Workers)
	}
	return nil
}

type NaiveOptions struct {
	Iterations int
	// Step size for the stddev normalised update.
	Step float64
}

func DefaultNaiveOptions() NaiveOptions {
	return NaiveOptions{Iterations: 20, Step: 1.0}
}
