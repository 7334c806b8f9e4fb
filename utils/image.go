package utils

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"math/rand/v2"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/stat"

	dd "github.com/setanarut/deepdream"
)

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FitImage shrinks img so neither side exceeds maxSide, keeping the aspect
// ratio. Images already small enough are returned unchanged.
func FitImage(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || max(w, h) <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return transform.Resize(img, nw, nh, transform.Linear)
}

// FromImage converts 8-bit RGB into the float image the renderer works on,
// values in [0,255]. Alpha is dropped.
func FromImage(img image.Image) *dd.Image {
	b := img.Bounds()
	out := dd.NewImage(b.Dy(), b.Dx())
	for y := range out.H {
		for x := range out.W {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Set(x, y, 0, float64(r>>8))
			out.Set(x, y, 1, float64(g>>8))
			out.Set(x, y, 2, float64(bl>>8))
		}
	}
	return out
}

// ToNRGBA maps img*scale onto 8-bit colour, clamping to [0,1] first.
// Use scale 1/255 for renderer output and 1 for Visstd output.
func ToNRGBA(img *dd.Image, scale float64) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.W, img.H))
	for y := range img.H {
		for x := range img.W {
			c := colorful.Color{
				R: img.At(x, y, 0) * scale,
				G: img.At(x, y, 1) * scale,
				B: img.At(x, y, 2) * scale,
			}.Clamped()
			r, g, b := c.RGB255()
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

// Visstd normalises img to mean 0.5 and standard deviation s for display.
func Visstd(img *dd.Image, s float64) *dd.Image {
	mean, std := stat.PopMeanStdDev(img.Pix, nil)
	std = max(std, 1e-4)
	out := img.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = (v-mean)/std*s + 0.5
	}
	return out
}

// NoiseImage is a grey start image: uniform noise in [0,1) around 100.
func NoiseImage(h, w int, seed uint64) *dd.Image {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := dd.NewImage(h, w)
	for i := range img.Pix {
		img.Pix[i] = rng.Float64() + 100.0
	}
	return img
}
