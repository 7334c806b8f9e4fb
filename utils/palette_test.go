package utils

import (
	"image"
	"image/color"
	"testing"
)

func twoTone(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{R: 20, G: 30, B: 200, A: 255}
			if x >= w/2 {
				c = color.RGBA{R: 250, G: 240, B: 90, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestExtractPaletteSortedByLightness(t *testing.T) {
	for _, m := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		p := ExtractPalette(twoTone(40, 40), 2, m)
		if len(p) == 0 || len(p) > 2 {
			t.Fatalf("%s: palette size %d", m, len(p))
		}
		for i := 1; i < len(p); i++ {
			li, _, _ := p[i].Lab()
			lp, _, _ := p[i-1].Lab()
			if li < lp {
				t.Fatalf("%s: palette not sorted: %v", m, p)
			}
		}
	}
}

func TestParsePaletteMethod(t *testing.T) {
	for _, m := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		got, err := ParsePaletteMethod(m.String())
		if err != nil || got != m {
			t.Fatalf("%s: got %v, %v", m, got, err)
		}
	}
	if _, err := ParsePaletteMethod("median-cut"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPaletteImage(t *testing.T) {
	p := ExtractPalette(twoTone(10, 10), 2, PaletteMethodDominantColor)
	img, err := PaletteImage(p, 8)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8*len(p) || b.Dy() != 8 {
		t.Fatalf("swatch bounds %v", b)
	}
	if _, err := PaletteImage(nil, 8); err == nil {
		t.Fatal("expected error for empty palette")
	}
}
