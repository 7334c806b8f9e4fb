package deepdream

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StepRule normalises a raw gradient before it is applied.
type StepRule int

const (
	// NormStdDev divides by the gradient's standard deviation.
	NormStdDev StepRule = iota
	// NormMeanAbs divides by the mean absolute gradient, keeping the step
	// comparable across octaves of different gradient magnitude.
	NormMeanAbs
)

const (
	stdDevEps  = 1e-8
	meanAbsEps = 1e-7
)

func (r StepRule) String() string {
	if r == NormMeanAbs {
		return "mean_abs"
	}
	return "stddev"
}

// scale returns the factor the raw gradient is multiplied by for a step of
// size step.
func (r StepRule) scale(g []float64, step float64) float64 {
	if len(g) == 0 {
		return 0
	}
	switch r {
	case NormMeanAbs:
		return step / (floats.Norm(g, 1)/float64(len(g)) + meanAbsEps)
	default:
		_, std := stat.PopMeanStdDev(g, nil)
		return step / (std + stdDevEps)
	}
}

// Ascend runs iterations gradient-ascent steps starting from a copy of img.
// The input is never modified; an error discards the working copy.
func Ascend(img *Image, obj Objective, grad GradientProvider, iterations int, step float64, rule StepRule) (*Image, error) {
	if iterations < 0 {
		return nil, invalid("iterations", iterations)
	}
	if math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, invalid("step", step)
	}
	work := img.Clone()
	for range iterations {
		g, err := grad.Gradient(work, obj)
		if err != nil {
			return nil, err
		}
		if err := sameShape("ascend", work, g); err != nil {
			return nil, err
		}
		floats.AddScaled(work.Pix, rule.scale(g.Pix, step), g.Pix)
	}
	return work, nil
}
