package deepdream

import (
	"math"
)

// Pyramid is an octave decomposition of an image: the coarsest Base plus
// the high-frequency residuals lost at each downsampling step.
// Octaves[0] belongs to the full-resolution step, so reconstruction walks the
// slice backwards.
type Pyramid struct {
	Base    *Image
	Octaves []*Image
}

// Decompose splits img into numOctaves levels, shrinking each level by
// octaveScale. With numOctaves == 1 the base is img itself and there are
// no residuals.
func Decompose(img *Image, numOctaves int, octaveScale float64) (*Pyramid, error) {
	if numOctaves < 1 {
		return nil, invalid("octaves", numOctaves)
	}
	if numOctaves > 1 && (!(octaveScale > 0) || math.IsInf(octaveScale, 0)) {
		return nil, invalid("octave scale", octaveScale)
	}
	cur := img
	octaves := make([]*Image, 0, numOctaves-1)
	for range numOctaves - 1 {
		h, w := octaveSize(cur.H, octaveScale), octaveSize(cur.W, octaveScale)
		lo, err := Resize(cur, h, w)
		if err != nil {
			return nil, err
		}
		up, err := Resize(lo, cur.H, cur.W)
		if err != nil {
			return nil, err
		}
		hi, err := Sub(cur, up)
		if err != nil {
			return nil, err
		}
		octaves = append(octaves, hi)
		cur = lo
	}
	return &Pyramid{Base: cur, Octaves: octaves}, nil
}

// NumOctaves counts the base level too.
func (p *Pyramid) NumOctaves() int {
	return len(p.Octaves) + 1
}

// Residual returns the residual consumed when moving up to octave level
// (1 <= level < NumOctaves), in coarse-to-fine order.
func (p *Pyramid) Residual(level int) *Image {
	return p.Octaves[len(p.Octaves)-level]
}

// Reconstruct adds every residual back onto the upsampled base.
func (p *Pyramid) Reconstruct() (*Image, error) {
	img := p.Base
	for level := 1; level < p.NumOctaves(); level++ {
		var err error
		if img, err = upAndAdd(img, p.Residual(level)); err != nil {
			return nil, err
		}
	}
	if img == p.Base {
		return img.Clone(), nil
	}
	return img, nil
}

// upAndAdd resizes img to the residual's shape and adds the residual.
func upAndAdd(img, hi *Image) (*Image, error) {
	up, err := Resize(img, hi.H, hi.W)
	if err != nil {
		return nil, err
	}
	return Add(up, hi)
}

func octaveSize(n int, scale float64) int {
	return max(int(math.Round(float64(n)/scale)), 1)
}
