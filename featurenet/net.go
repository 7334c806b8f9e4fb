// Package featurenet is a small fixed-weight convolutional feature
// extractor that implements deepdream.GradientOracle on the CPU. It stands in
// for a pretrained classifier: weights are drawn once from a seed and never
// change, so every evaluation is a pure function of the input.
package featurenet

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"

	dd "github.com/setanarut/deepdream"
)

const (
	kernelSize = 3
	// Rows of output computed per im2col band.
	bandRows = 32
	// preReluSuffix selects a layer's activation before the ReLU.
	preReluSuffix = "_pre_relu"
)

type Config struct {
	// Output channels of each conv layer, input to output.
	Widths []int
	// Subtracted from every input sample before the first layer.
	Mean float64
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		Widths: []int{16, 32, 48},
		Mean:   117.0,
		Seed:   1,
	}
}

// LayerInfo describes one named activation.
type LayerInfo struct {
	Name     string
	Channels int
}

type convLayer struct {
	name   string
	in     int
	out    int
	weight *mat.Dense // (k*k*in) x out
	bias   []float64
}

// Net is immutable after New and safe for concurrent use.
type Net struct {
	mean   float64
	layers []convLayer
}

// New builds a network with He-initialised 3x3 kernels.
func New(cfg Config) (*Net, error) {
	if len(cfg.Widths) == 0 {
		return nil, errors.New("featurenet: no layers")
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	n := &Net{mean: cfg.Mean}
	in := dd.Channels
	for i, out := range cfg.Widths {
		if out <= 0 {
			return nil, fmt.Errorf("featurenet: layer %d width %d", i, out)
		}
		rows := kernelSize * kernelSize * in
		stddev := math.Sqrt(2.0 / float64(rows))
		data := make([]float64, rows*out)
		for j := range data {
			data[j] = rng.NormFloat64() * stddev
		}
		n.layers = append(n.layers, convLayer{
			name:   fmt.Sprintf("conv%d", i+1),
			in:     in,
			out:    out,
			weight: mat.NewDense(rows, out, data),
			bias:   make([]float64, out),
		})
		in = out
	}
	return n, nil
}

// Layers lists the selectable activations, pre-ReLU variants included.
func (n *Net) Layers() []LayerInfo {
	out := make([]LayerInfo, 0, 2*len(n.layers))
	for _, l := range n.layers {
		out = append(out,
			LayerInfo{Name: l.name + preReluSuffix, Channels: l.out},
			LayerInfo{Name: l.name, Channels: l.out},
		)
	}
	return out
}

// TotalChannels sums the feature channels over all conv layers.
func (n *Net) TotalChannels() int {
	total := 0
	for _, l := range n.layers {
		total += l.out
	}
	return total
}

// lookup resolves a tensor name to a layer index and whether the ReLU applies.
func (n *Net) lookup(name string) (int, bool, bool) {
	base, pre := strings.CutSuffix(name, preReluSuffix)
	for i, l := range n.layers {
		if l.name == base {
			return i, !pre, true
		}
	}
	return 0, false, false
}

// EvaluateAndGradient runs the network up to obj.Layer, reduces the
// activation and backpropagates the score to the input pixels.
func (n *Net) EvaluateAndGradient(img *dd.Image, obj dd.Objective) (float64, *dd.Image, error) {
	fail := func(err error) (float64, *dd.Image, error) {
		return 0, nil, &dd.ModelEvaluationError{Layer: obj.Layer, Err: err}
	}
	if img.C != dd.Channels {
		return fail(fmt.Errorf("input has %d channels, model expects %d", img.C, dd.Channels))
	}
	if img.H == 0 || img.W == 0 {
		return fail(fmt.Errorf("empty input %v", img.Shape()))
	}
	target, relu, ok := n.lookup(obj.Layer)
	if !ok {
		return fail(errors.New("unknown layer"))
	}
	ch := n.layers[target].out
	if obj.Channel != dd.AllChannels && (obj.Channel < 0 || obj.Channel >= ch) {
		return fail(fmt.Errorf("channel %d out of range [0,%d)", obj.Channel, ch))
	}

	x := make([]float64, len(img.Pix))
	for i, v := range img.Pix {
		x[i] = v - n.mean
	}

	// inputs[i] feeds layer i; pre[i] is its output before ReLU.
	inputs := make([][]float64, target+1)
	pre := make([][]float64, target+1)
	cur := x
	for i := 0; i <= target; i++ {
		inputs[i] = cur
		pre[i] = n.layers[i].forward(cur, img.H, img.W)
		if i < target || relu {
			cur = reluForward(pre[i])
		} else {
			cur = pre[i]
		}
	}

	score := obj.Score(cur, ch)
	g := obj.Seed(cur, ch)
	for i := target; i >= 0; i-- {
		if i < target || relu {
			reluBackward(g, pre[i])
		}
		g = n.layers[i].backward(g, img.H, img.W)
	}
	return score, &dd.Image{H: img.H, W: img.W, C: img.C, Pix: g}, nil
}

func reluForward(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = max(x, 0)
	}
	return out
}

// reluBackward zeroes g wherever the pre-activation was not positive.
func reluBackward(g, pre []float64) {
	for i, x := range pre {
		if x <= 0 {
			g[i] = 0
		}
	}
}
