package deepdream

import "fmt"

// Reduction selects how an activation collapses into a scalar score.
type Reduction int

const (
	ReduceMean Reduction = iota
	ReduceMeanSquare
)

func (r Reduction) String() string {
	switch r {
	case ReduceMeanSquare:
		return "mean_square"
	default:
		return "mean"
	}
}

// AllChannels disables channel slicing.
const AllChannels = -1

// Objective names a model activation and the reduction applied to it.
// Channel selects one slice of the activation's last axis, or AllChannels.
type Objective struct {
	Layer     string
	Channel   int
	Reduction Reduction
}

// Mean maximises the mean activation of layer.
func Mean(layer string) Objective {
	return Objective{Layer: layer, Channel: AllChannels, Reduction: ReduceMean}
}

// MeanSquare maximises the mean squared activation of layer.
func MeanSquare(layer string) Objective {
	return Objective{Layer: layer, Channel: AllChannels, Reduction: ReduceMeanSquare}
}

// WithChannel returns a copy restricted to a single channel.
func (o Objective) WithChannel(c int) Objective {
	o.Channel = c
	return o
}

func (o Objective) String() string {
	if o.Channel == AllChannels {
		return fmt.Sprintf("%s(%s)", o.Reduction, o.Layer)
	}
	return fmt.Sprintf("%s(%s[:,:,%d])", o.Reduction, o.Layer, o.Channel)
}

// Score reduces an activation laid out as interleaved HWC with ch channels.
// The caller checks the channel index against ch.
func (o Objective) Score(act []float64, ch int) float64 {
	sum := 0.0
	n := 0
	for i, v := range act {
		if o.Channel != AllChannels && i%ch != o.Channel {
			continue
		}
		if o.Reduction == ReduceMeanSquare {
			v *= v
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Seed returns d Score / d act, the starting point of backpropagation.
func (o Objective) Seed(act []float64, ch int) []float64 {
	grad := make([]float64, len(act))
	n := len(act)
	if o.Channel != AllChannels {
		n = len(act) / ch
	}
	if n == 0 {
		return grad
	}
	inv := 1.0 / float64(n)
	for i, v := range act {
		if o.Channel != AllChannels && i%ch != o.Channel {
			continue
		}
		if o.Reduction == ReduceMeanSquare {
			grad[i] = 2 * v * inv
		} else {
			grad[i] = inv
		}
	}
	return grad
}
