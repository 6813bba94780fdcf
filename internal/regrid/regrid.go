package regrid

import (
	"context"
	"math"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/utils/affine"
)

// ProgressFunc is called after each row of the output grid has been computed
type ProgressFunc func(row, rows int)

// DefaultMaxCells is the default limit of the number of cells of an output grid
const DefaultMaxCells = 1 << 28

// Regridder resamples rasters whose pixel grid is rotated or sheared onto an axis-aligned world grid
type Regridder struct {
	CellSize CellSizeStrategy
	Progress ProgressFunc
	// MaxCells limits the size of the output grid (DefaultMaxCells if <= 0)
	MaxCells int
}

// New creates a Regridder using the MinDiagonal cell size strategy
func New() *Regridder {
	return &Regridder{CellSize: MinDiagonal, MaxCells: DefaultMaxCells}
}

// Regrid maps src onto an axis-aligned grid using nearest-neighbour inverse mapping.
//
// pixToWorld maps the center of the source cell (i, j) to world coordinates.
// The output grid has square cells, its cell (0, 0) is centered on the lower-left corner
// of the bounding box of the source, and its rows are ordered with increasing y.
//
// If src has no nodata, the default nodata of its type marks the cells outside the source.
// If this value is already used by the source, the output is promoted to a larger type.
//
// Regrid takes the ownership of src: src is released, whatever the result.
func (r *Regridder) Regrid(ctx context.Context, src *gridio.Raster, pixToWorld *affine.Affine) (*gridio.Raster, error) {
	if src.Released() {
		return nil, gridio.ErrReleased
	}
	defer src.Release()

	if !isFinite(pixToWorld[:]...) {
		return nil, gridio.NewSingularTransform(nil, "regrid %s: transform %v is not finite", src.Name, *pixToWorld)
	}
	worldToPix, err := pixToWorld.Invert()
	if err != nil {
		return nil, gridio.NewSingularTransform(err, "regrid %s", src.Name)
	}

	strategy := r.CellSize
	if strategy == nil {
		strategy = MinDiagonal
	}
	z := strategy.CellSize(pixToWorld)
	if !(z > 0) || math.IsInf(z, 0) {
		return nil, gridio.NewInvalidCellSize("regrid %s: cell size=%v", src.Name, z)
	}

	src.Transform = pixToWorld
	bounds := src.Bounds()
	if !isFinite(bounds[:]...) {
		return nil, gridio.NewSingularTransform(nil, "regrid %s: footprint is not finite", src.Name)
	}
	xMin, yMin, xMax, yMax := bounds[0], bounds[1], bounds[2], bounds[3]
	fx := 1 + math.Floor((xMax-xMin)/z)
	fy := 1 + math.Floor((yMax-yMin)/z)
	maxCells := r.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	if !(fx*fy <= float64(maxCells)) {
		return nil, gridio.NewInvalidCellSize("regrid %s: cell size=%v gives a %.0fx%.0f grid (max %d cells)", src.Name, z, fx, fy, maxCells)
	}
	nx, ny := int(fx), int(fy)

	dtype, nodata := outputNoData(src)
	dst, err := gridio.NewRaster(dtype, nx, ny)
	if err != nil {
		return nil, gridio.NewInvalidCellSize("regrid %s: %v", src.Name, err)
	}
	dst.Name = src.Name
	dst.Projection = src.Projection
	dst.Transform = affine.Translation(xMin, yMin).Multiply(affine.Scale(z, z))
	dst.SetNoData(nodata)

	values := dst.Values()
	for j := 0; j < ny; j++ {
		if err := ctx.Err(); err != nil {
			dst.Release()
			return nil, gridio.NewCancelled(err, "regrid %s: row %d/%d", src.Name, j, ny)
		}
		wy := yMin + float64(j)*z
		row := values[j*nx : (j+1)*nx]
		for i := range row {
			x, y := worldToPix.Transform(xMin+float64(i)*z, wy)
			if v, ok := src.NearestValue(x, y); ok {
				row[i] = v
			} else {
				row[i] = dst.NoData
			}
		}
		if r.Progress != nil {
			r.Progress(j+1, ny)
		}
	}
	return dst, nil
}

// outputNoData returns the type and the nodata of the output grid
func outputNoData(src *gridio.Raster) (gridio.DType, float64) {
	if src.HasNoData {
		return src.DType, src.NoData
	}
	nodata := src.DType.DefaultNoData()
	if math.IsNaN(nodata) {
		return src.DType, nodata
	}
	for _, v := range src.Values() {
		if v == nodata {
			promoted := src.DType.Promote()
			return promoted, promoted.DefaultNoData()
		}
	}
	return src.DType, nodata
}

func isFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
