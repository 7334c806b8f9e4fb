package deepdream

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Channels is the fixed channel count of every Image.
const Channels = 3

// Shape is the (height, width, channels) extent of an Image.
type Shape struct {
	H, W, C int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.H, s.W, s.C)
}

// Image is a float64 raster in interleaved HWC order, len(Pix) = H*W*C.
// Values live in the caller's brightness scale (roughly 0-255).
type Image struct {
	H, W, C int
	Pix     []float64
}

// NewImage allocates a zero-filled image.
func NewImage(h, w int) *Image {
	return &Image{H: h, W: w, C: Channels, Pix: make([]float64, h*w*Channels)}
}

// Filled returns an h*w image with every sample set to v.
func Filled(h, w int, v float64) *Image {
	img := NewImage(h, w)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func (img *Image) Shape() Shape {
	return Shape{H: img.H, W: img.W, C: img.C}
}

func (img *Image) Clone() *Image {
	out := &Image{H: img.H, W: img.W, C: img.C, Pix: make([]float64, len(img.Pix))}
	copy(out.Pix, img.Pix)
	return out
}

func (img *Image) offset(x, y int) int {
	return (y*img.W + x) * img.C
}

// At returns the sample at column x, row y, channel c.
func (img *Image) At(x, y, c int) float64 {
	return img.Pix[img.offset(x, y)+c]
}

func (img *Image) Set(x, y, c int, v float64) {
	img.Pix[img.offset(x, y)+c] = v
}

func sameShape(op string, a, b *Image) error {
	if a.Shape() != b.Shape() {
		return &ShapeMismatchError{Op: op, Want: a.Shape(), Got: b.Shape()}
	}
	return nil
}

// Add returns a + b.
func Add(a, b *Image) (*Image, error) {
	if err := sameShape("add", a, b); err != nil {
		return nil, err
	}
	out := a.Clone()
	floats.Add(out.Pix, b.Pix)
	return out, nil
}

// Sub returns a - b.
func Sub(a, b *Image) (*Image, error) {
	if err := sameShape("sub", a, b); err != nil {
		return nil, err
	}
	out := a.Clone()
	floats.Sub(out.Pix, b.Pix)
	return out, nil
}

// Roll circularly shifts the image by dx columns and dy rows, like a
// two-axis numpy roll: out[(y+dy) mod H][(x+dx) mod W] = img[y][x].
func Roll(img *Image, dx, dy int) *Image {
	out := &Image{H: img.H, W: img.W, C: img.C, Pix: make([]float64, len(img.Pix))}
	if img.H == 0 || img.W == 0 {
		return out
	}
	dx = mod(dx, img.W)
	dy = mod(dy, img.H)
	rowLen := img.W * img.C
	for y := range img.H {
		src := img.Pix[y*rowLen : (y+1)*rowLen]
		ty := (y + dy) % img.H
		dst := out.Pix[ty*rowLen : (ty+1)*rowLen]
		// Split the row at the wrap point.
		cut := (img.W - dx) * img.C
		copy(dst[dx*img.C:], src[:cut])
		copy(dst[:dx*img.C], src[cut:])
	}
	return out
}

// Crop copies the region [y, y+h) x [x, x+w) clipped to the image bounds.
func Crop(img *Image, x, y, w, h int) *Image {
	x1 := min(x+w, img.W)
	y1 := min(y+h, img.H)
	oh, ow := max(y1-y, 0), max(x1-x, 0)
	out := &Image{H: oh, W: ow, C: img.C, Pix: make([]float64, oh*ow*img.C)}
	rowLen := out.W * img.C
	for row := range out.H {
		src := img.offset(x, y+row)
		copy(out.Pix[row*rowLen:(row+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return out
}

// paste writes src into dst with its top-left corner at (x, y).
func paste(dst, src *Image, x, y int) {
	rowLen := src.W * src.C
	for row := range src.H {
		off := dst.offset(x, y+row)
		copy(dst.Pix[off:off+rowLen], src.Pix[row*rowLen:(row+1)*rowLen])
	}
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
