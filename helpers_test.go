package deepdream

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
)

func randomImage(h, w int, seed uint64) *Image {
	rng := rand.New(rand.NewPCG(seed, 7))
	img := NewImage(h, w)
	for i := range img.Pix {
		img.Pix[i] = rng.Float64() * 255
	}
	return img
}

// positionImage stores y*W+x in every channel of pixel (x, y).
func positionImage(h, w int) *Image {
	img := NewImage(h, w)
	for y := range h {
		for x := range w {
			for c := range Channels {
				img.Set(x, y, c, float64(y*w+x))
			}
		}
	}
	return img
}

func assertClose(t *testing.T, got, want *Image, tol float64) {
	t.Helper()
	if got.Shape() != want.Shape() {
		t.Fatalf("shape %v, want %v", got.Shape(), want.Shape())
	}
	for i := range want.Pix {
		if math.Abs(got.Pix[i]-want.Pix[i]) > tol {
			t.Fatalf("index %d: got %f, want %f", i, got.Pix[i], want.Pix[i])
		}
	}
}

// constOracle returns the same gradient value everywhere.
type constOracle struct {
	value float64
}

func (o constOracle) EvaluateAndGradient(img *Image, _ Objective) (float64, *Image, error) {
	return 0, Filled(img.H, img.W, o.value), nil
}

// channelOracle returns gradient c+1 in channel c regardless of position.
type channelOracle struct{}

func (channelOracle) EvaluateAndGradient(img *Image, _ Objective) (float64, *Image, error) {
	g := NewImage(img.H, img.W)
	for i := range g.Pix {
		g.Pix[i] = float64(i%Channels + 1)
	}
	return 0, g, nil
}

// cornerOracle fills each tile gradient with the tile's top-left sample, so
// on a positionImage the gradient records which tile wrote it.
type cornerOracle struct{}

func (cornerOracle) EvaluateAndGradient(img *Image, _ Objective) (float64, *Image, error) {
	return 0, Filled(img.H, img.W, img.Pix[0]), nil
}

// countingOracle numbers its calls and writes the call index as the gradient.
type countingOracle struct {
	mu    sync.Mutex
	calls int
}

func (o *countingOracle) EvaluateAndGradient(img *Image, _ Objective) (float64, *Image, error) {
	o.mu.Lock()
	n := o.calls
	o.calls++
	o.mu.Unlock()
	return 0, Filled(img.H, img.W, float64(n)), nil
}

type failingOracle struct {
	err error
}

func (o failingOracle) EvaluateAndGradient(*Image, Objective) (float64, *Image, error) {
	return 0, nil, o.err
}

// scaledOracle returns a position-dependent gradient times a large factor.
type scaledOracle struct {
	factor float64
}

func (o scaledOracle) EvaluateAndGradient(img *Image, _ Objective) (float64, *Image, error) {
	g := NewImage(img.H, img.W)
	for i := range g.Pix {
		g.Pix[i] = o.factor * float64(i%7-3)
	}
	return 0, g, nil
}
