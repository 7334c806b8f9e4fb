package featurenet

import "gonum.org/v1/gonum/mat"

// Convolutions are 3x3, stride 1, zero padding 1, so every activation keeps
// the input's height and width. Tensors are interleaved HWC, which makes the
// im2col product (rows = pixels, cols = channels) land directly in layout.

// im2col fills cols for output rows [y0, y1).
func (l *convLayer) im2col(cols *mat.Dense, x []float64, h, w, y0, y1 int) {
	raw := cols.RawMatrix()
	half := kernelSize / 2
	for y := y0; y < y1; y++ {
		for xx := range w {
			row := raw.Data[((y-y0)*w+xx)*raw.Stride:]
			for ky := range kernelSize {
				sy := y + ky - half
				for kx := range kernelSize {
					sx := xx + kx - half
					dst := row[(ky*kernelSize+kx)*l.in : (ky*kernelSize+kx+1)*l.in]
					if sy < 0 || sy >= h || sx < 0 || sx >= w {
						clear(dst)
						continue
					}
					src := (sy*w + sx) * l.in
					copy(dst, x[src:src+l.in])
				}
			}
		}
	}
}

// col2im scatters column gradients back onto the input rows they came from.
func (l *convLayer) col2im(gx []float64, cols *mat.Dense, h, w, y0, y1 int) {
	raw := cols.RawMatrix()
	half := kernelSize / 2
	for y := y0; y < y1; y++ {
		for xx := range w {
			row := raw.Data[((y-y0)*w+xx)*raw.Stride:]
			for ky := range kernelSize {
				sy := y + ky - half
				if sy < 0 || sy >= h {
					continue
				}
				for kx := range kernelSize {
					sx := xx + kx - half
					if sx < 0 || sx >= w {
						continue
					}
					src := row[(ky*kernelSize+kx)*l.in:]
					dst := gx[(sy*w+sx)*l.in:]
					for c := range l.in {
						dst[c] += src[c]
					}
				}
			}
		}
	}
}

// forward returns the pre-activation output for an h x w input.
func (l *convLayer) forward(x []float64, h, w int) []float64 {
	out := make([]float64, h*w*l.out)
	k := kernelSize * kernelSize * l.in
	for y0 := 0; y0 < h; y0 += bandRows {
		y1 := min(y0+bandRows, h)
		rows := (y1 - y0) * w
		cols := mat.NewDense(rows, k, nil)
		l.im2col(cols, x, h, w, y0, y1)
		res := mat.NewDense(rows, l.out, out[y0*w*l.out:y1*w*l.out])
		res.Mul(cols, l.weight)
	}
	for i := range out {
		out[i] += l.bias[i%l.out]
	}
	return out
}

// backward maps d score / d output to d score / d input.
func (l *convLayer) backward(g []float64, h, w int) []float64 {
	gx := make([]float64, h*w*l.in)
	k := kernelSize * kernelSize * l.in
	for y0 := 0; y0 < h; y0 += bandRows {
		y1 := min(y0+bandRows, h)
		rows := (y1 - y0) * w
		gOut := mat.NewDense(rows, l.out, g[y0*w*l.out:y1*w*l.out])
		cols := mat.NewDense(rows, k, nil)
		cols.Mul(gOut, l.weight.T())
		l.col2im(gx, cols, h, w, y0, y1)
	}
	return gx
}
