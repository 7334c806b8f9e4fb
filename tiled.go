package deepdream

import (
	"github.com/sourcegraph/conc/pool"
)

// Tile is a rectangle over the shifted image.
type Tile struct {
	Y, X, H, W int
}

// TiledEvaluator computes whole-image gradients one tile at a time. Each call
// rolls the image by a fresh random offset first so tile seams land somewhere
// else on every ascent step.
type TiledEvaluator struct {
	Oracle   GradientOracle
	TileSize int
	Shift    ShiftSource
	// Workers > 1 evaluates tiles concurrently. Results are still stitched
	// in grid order, so the output matches the sequential path.
	Workers int
}

func NewTiledEvaluator(oracle GradientOracle, tileSize int, shift ShiftSource) (*TiledEvaluator, error) {
	if tileSize <= 0 {
		return nil, invalid("tile size", tileSize)
	}
	if shift == nil {
		shift = NewRandomShift(0)
	}
	return &TiledEvaluator{Oracle: oracle, TileSize: tileSize, Shift: shift}, nil
}

// tileOrigins lists tile starts along one axis of length n. Starts step by
// size up to max(n-size/2, size); a tile that would run past the edge is
// pulled back so it ends on the edge and overlaps its neighbour, and a
// trailing full tile is added if the grid stops short of n.
func tileOrigins(n, size int) []int {
	limit := max(n-size/2, size)
	last := max(n-size, 0)
	var out []int
	for o := 0; o < limit; o += size {
		out = append(out, min(o, last))
	}
	if out[len(out)-1]+size < n {
		out = append(out, last)
	}
	return out
}

// Tiles returns the tile grid for an h x w image in row-major order. Later
// tiles win where tiles overlap.
func Tiles(h, w, size int) []Tile {
	ys := tileOrigins(h, size)
	xs := tileOrigins(w, size)
	tiles := make([]Tile, 0, len(ys)*len(xs))
	for _, y := range ys {
		for _, x := range xs {
			tiles = append(tiles, Tile{Y: y, X: x, H: min(size, h-y), W: min(size, w-x)})
		}
	}
	return tiles
}

// Gradient implements GradientProvider.
func (t *TiledEvaluator) Gradient(img *Image, obj Objective) (*Image, error) {
	if t.TileSize <= 0 {
		return nil, invalid("tile size", t.TileSize)
	}
	sx, sy := t.Shift.Shift(t.TileSize)
	shifted := Roll(img, sx, sy)
	tiles := Tiles(img.H, img.W, t.TileSize)

	grads := make([]*Image, len(tiles))
	eval := func(i int) error {
		tile := tiles[i]
		sub := Crop(shifted, tile.X, tile.Y, tile.W, tile.H)
		_, g, err := t.Oracle.EvaluateAndGradient(sub, obj)
		if err != nil {
			return err
		}
		if err := sameShape("tile gradient", sub, g); err != nil {
			return err
		}
		grads[i] = g
		return nil
	}

	if t.Workers > 1 && len(tiles) > 1 {
		p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(t.Workers)
		for i := range tiles {
			p.Go(func() error { return eval(i) })
		}
		if err := p.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range tiles {
			if err := eval(i); err != nil {
				return nil, err
			}
		}
	}

	grad := &Image{H: img.H, W: img.W, C: img.C, Pix: make([]float64, len(img.Pix))}
	for i, tile := range tiles {
		paste(grad, grads[i], tile.X, tile.Y)
	}
	return Roll(grad, -sx, -sy), nil
}
