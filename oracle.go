package deepdream

// GradientOracle evaluates an objective through a fixed differentiable model
// and returns its value together with d objective / d image. Implementations
// must be safe for concurrent use when a TiledEvaluator runs with more than
// one worker.
type GradientOracle interface {
	EvaluateAndGradient(img *Image, obj Objective) (float64, *Image, error)
}

// GradientProvider yields the gradient an ascent step follows.
type GradientProvider interface {
	Gradient(img *Image, obj Objective) (*Image, error)
}

// Direct evaluates the oracle on the whole image in a single call.
type Direct struct {
	Oracle GradientOracle
}

func (d Direct) Gradient(img *Image, obj Objective) (*Image, error) {
	_, g, err := d.Oracle.EvaluateAndGradient(img, obj)
	if err != nil {
		return nil, err
	}
	if err := sameShape("gradient", img, g); err != nil {
		return nil, err
	}
	return g, nil
}
