package regrid

import (
	"math"

	"github.com/airbusgeo/gridio/internal/utils/affine"
)

// CellSizeStrategy returns the cell size of the axis-aligned output grid, given the pixel-to-world transform
type CellSizeStrategy interface {
	CellSize(pixToWorld *affine.Affine) float64
}

// CellSizeFunc is an adapter to use ordinary functions as CellSizeStrategy
type CellSizeFunc func(pixToWorld *affine.Affine) float64

// CellSize implements CellSizeStrategy
func (f CellSizeFunc) CellSize(pixToWorld *affine.Affine) float64 {
	return f(pixToWorld)
}

// MinDiagonal uses the smallest of the absolute diagonal terms of the matrix.
// For rotated grids, this is an approximation that does not preserve the pixel area.
var MinDiagonal = CellSizeFunc(func(a *affine.Affine) float64 {
	return math.Min(math.Abs(a.Rx()), math.Abs(a.Ry()))
})

// PixelArea uses the square root of the area of a source pixel
var PixelArea = CellSizeFunc(func(a *affine.Affine) float64 {
	return math.Sqrt(math.Abs(a.Det()))
})

// Fixed always returns z
func Fixed(z float64) CellSizeStrategy {
	return CellSizeFunc(func(*affine.Affine) float64 { return z })
}

// CellSizeStrategyFromString returns the strategy named s ("min-diagonal" or "pixel-area")
func CellSizeStrategyFromString(s string) (CellSizeStrategy, bool) {
	switch s {
	case "", "min-diagonal":
		return MinDiagonal, true
	case "pixel-area":
		return PixelArea, true
	}
	return nil, false
}
