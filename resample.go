package deepdream

// Resize resamples img to h x w with bilinear interpolation. Source
// coordinates are dst*in/out (corners not aligned) and the last row/column
// is clamped, so downsampling and upsampling with arbitrary ratios share one
// code path.
func Resize(img *Image, h, w int) (*Image, error) {
	if h <= 0 {
		return nil, invalid("height", h)
	}
	if w <= 0 {
		return nil, invalid("width", w)
	}
	if img.H == 0 || img.W == 0 {
		return nil, &ShapeMismatchError{Op: "resize", Want: Shape{H: 1, W: 1, C: img.C}, Got: img.Shape()}
	}
	if h == img.H && w == img.W {
		return img.Clone(), nil
	}
	out := &Image{H: h, W: w, C: img.C, Pix: make([]float64, h*w*img.C)}

	scaleY := float64(img.H) / float64(h)
	scaleX := float64(img.W) / float64(w)

	// Column taps do not depend on the row.
	x0s := make([]int, w)
	x1s := make([]int, w)
	fxs := make([]float64, w)
	for x := range w {
		sx := float64(x) * scaleX
		x0 := int(sx)
		x0s[x] = x0
		x1s[x] = min(x0+1, img.W-1)
		fxs[x] = sx - float64(x0)
	}

	for y := range h {
		sy := float64(y) * scaleY
		y0 := int(sy)
		y1 := min(y0+1, img.H-1)
		fy := sy - float64(y0)
		for x := range w {
			top0 := img.offset(x0s[x], y0)
			top1 := img.offset(x1s[x], y0)
			bot0 := img.offset(x0s[x], y1)
			bot1 := img.offset(x1s[x], y1)
			fx := fxs[x]
			off := out.offset(x, y)
			for c := range img.C {
				top := img.Pix[top0+c] + (img.Pix[top1+c]-img.Pix[top0+c])*fx
				bot := img.Pix[bot0+c] + (img.Pix[bot1+c]-img.Pix[bot0+c])*fx
				out.Pix[off+c] = top + (bot-top)*fy
			}
		}
	}
	return out, nil
}
