package featurenet

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	dd "github.com/setanarut/deepdream"
)

func testNet(t *testing.T) *Net {
	t.Helper()
	n, err := New(Config{Widths: []int{4, 6}, Mean: 117, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func noise(h, w int, seed uint64) *dd.Image {
	rng := rand.New(rand.NewPCG(seed, 1))
	img := dd.NewImage(h, w)
	for i := range img.Pix {
		img.Pix[i] = rng.Float64() * 255
	}
	return img
}

// checkGradient compares the analytic gradient with central differences at
// the given sample indices.
func checkGradient(t *testing.T, n *Net, img *dd.Image, obj dd.Objective, idx []int, tol float64) {
	t.Helper()
	_, g, err := n.EvaluateAndGradient(img, obj)
	if err != nil {
		t.Fatal(err)
	}
	if g.Shape() != img.Shape() {
		t.Fatalf("gradient shape %v, want %v", g.Shape(), img.Shape())
	}
	const h = 1e-4
	for _, i := range idx {
		up := img.Clone()
		dn := img.Clone()
		up.Pix[i] += h
		dn.Pix[i] -= h
		su, _, err := n.EvaluateAndGradient(up, obj)
		if err != nil {
			t.Fatal(err)
		}
		sd, _, err := n.EvaluateAndGradient(dn, obj)
		if err != nil {
			t.Fatal(err)
		}
		fd := (su - sd) / (2 * h)
		if math.Abs(fd-g.Pix[i]) > tol*max(1, math.Abs(fd)) {
			t.Fatalf("%s index %d: analytic %g, numeric %g", obj, i, g.Pix[i], fd)
		}
	}
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	n := testNet(t)
	img := noise(5, 7, 1)
	all := make([]int, len(img.Pix))
	for i := range all {
		all[i] = i
	}
	checkGradient(t, n, img, dd.MeanSquare("conv1_pre_relu"), all, 1e-5)
	checkGradient(t, n, img, dd.Mean("conv2_pre_relu").WithChannel(2), all, 1e-4)
	checkGradient(t, n, img, dd.MeanSquare("conv2"), all, 1e-4)
}

func TestGradientAcrossBands(t *testing.T) {
	n := testNet(t)
	img := noise(bandRows+9, 4, 2)
	// Samples either side of the first band boundary.
	var idx []int
	for _, y := range []int{bandRows - 2, bandRows - 1, bandRows, bandRows + 1} {
		for c := range dd.Channels {
			idx = append(idx, (y*img.W+1)*dd.Channels+c)
		}
	}
	checkGradient(t, n, img, dd.MeanSquare("conv2_pre_relu"), idx, 1e-5)
}

func TestArbitraryShapes(t *testing.T) {
	n := testNet(t)
	for _, dims := range [][2]int{{1, 1}, {2, 9}, {11, 3}} {
		img := noise(dims[0], dims[1], 3)
		_, g, err := n.EvaluateAndGradient(img, dd.Mean("conv2"))
		if err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if g.Shape() != img.Shape() {
			t.Fatalf("%v: gradient shape %v", dims, g.Shape())
		}
	}
}

func TestEvaluationErrors(t *testing.T) {
	n := testNet(t)
	fourChannel := &dd.Image{H: 2, W: 2, C: 4, Pix: make([]float64, 16)}
	cases := []struct {
		name string
		img  *dd.Image
		obj  dd.Objective
	}{
		{"channels", fourChannel, dd.Mean("conv1")},
		{"empty", dd.NewImage(0, 3), dd.Mean("conv1")},
		{"layer", dd.NewImage(2, 2), dd.Mean("mixed4c")},
		{"channel index", dd.NewImage(2, 2), dd.Mean("conv1").WithChannel(4)},
	}
	for _, c := range cases {
		_, _, err := n.EvaluateAndGradient(c.img, c.obj)
		if !errors.Is(err, dd.ErrModelEvaluation) {
			t.Fatalf("%s: expected model evaluation error, got %v", c.name, err)
		}
		var me *dd.ModelEvaluationError
		if !errors.As(err, &me) || me.Layer != c.obj.Layer {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
	}
}

func TestLayers(t *testing.T) {
	n := testNet(t)
	layers := n.Layers()
	if len(layers) != 4 {
		t.Fatalf("got %d layers", len(layers))
	}
	if layers[2].Name != "conv2_pre_relu" || layers[2].Channels != 6 {
		t.Fatalf("unexpected layer %+v", layers[2])
	}
	if n.TotalChannels() != 10 {
		t.Fatalf("total channels %d", n.TotalChannels())
	}
}

func TestSameSeedSameModel(t *testing.T) {
	a := testNet(t)
	b := testNet(t)
	img := noise(6, 6, 4)
	sa, ga, _ := a.EvaluateAndGradient(img, dd.Mean("conv2"))
	sb, gb, _ := b.EvaluateAndGradient(img, dd.Mean("conv2"))
	if sa != sb {
		t.Fatalf("scores differ: %f vs %f", sa, sb)
	}
	for i := range ga.Pix {
		if ga.Pix[i] != gb.Pix[i] {
			t.Fatalf("gradients differ at %d", i)
		}
	}
}

func TestNewRejectsEmptyConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for no layers")
	}
	if _, err := New(Config{Widths: []int{3, 0}}); err == nil {
		t.Fatal("expected error for zero width")
	}
}
