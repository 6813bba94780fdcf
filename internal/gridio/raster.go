package gridio

import (
	"fmt"
	"math"

	"github.com/airbusgeo/gridio/internal/utils"
	"github.com/airbusgeo/gridio/internal/utils/affine"
	"github.com/twpayne/go-geom"
)

// Raster is an in-memory single band grid.
//
// Transform maps the center of the cell (i, j) to world coordinates.
// Values are stored row-major and are cast to DType when written.
// A Raster is a linear resource: once released (or handed to a function that consumes it),
// the handle is invalid and every access to its values panics with ErrReleased.
type Raster struct {
	Name       string
	DType      DType
	Width      int
	Height     int
	NoData     float64
	HasNoData  bool
	Transform  *affine.Affine
	Projection string // WKT

	values   []float64
	released bool
}

// MaxCells is the largest number of cells of a raster
const MaxCells = math.MaxInt32

func checkSize(width, height int) error {
	if width < 1 || height < 1 || width > MaxCells/height {
		return fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	return nil
}

// NewRaster allocates a width x height raster. The cells are initialized to zero.
func NewRaster(dtype DType, width, height int) (*Raster, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &Raster{
		DType:     dtype,
		Width:     width,
		Height:    height,
		Transform: affine.Identity(),
		values:    make([]float64, width*height),
	}, nil
}

// NewRasterFromValues creates a raster using values (row-major, len = width*height).
// The raster takes the ownership of values.
func NewRasterFromValues(dtype DType, width, height int, values []float64) (*Raster, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("invalid raster size %dx%d for %d values", width, height, len(values))
	}
	for i, v := range values {
		values[i] = dtype.Cast(v)
	}
	return &Raster{
		DType:     dtype,
		Width:     width,
		Height:    height,
		Transform: affine.Identity(),
		values:    values,
	}, nil
}

// SetNoData defines the nodata marker
func (r *Raster) SetNoData(nodata float64) {
	r.NoData = r.DType.Cast(nodata)
	r.HasNoData = true
}

// Values returns the underlying cells (row-major). Must not be used after Release.
func (r *Raster) Values() []float64 {
	r.mustBeAlive()
	return r.values
}

// At returns the value of the cell (i, j)
func (r *Raster) At(i, j int) float64 {
	r.mustBeAlive()
	return r.values[j*r.Width+i]
}

// Set sets the value of the cell (i, j), cast to the raster type
func (r *Raster) Set(i, j int, v float64) {
	r.mustBeAlive()
	r.values[j*r.Width+i] = r.DType.Cast(v)
}

// IsNoData returns true if v is the nodata marker of the raster
func (r *Raster) IsNoData(v float64) bool {
	if !r.HasNoData {
		return false
	}
	if math.IsNaN(r.NoData) {
		return math.IsNaN(v)
	}
	return v == r.NoData
}

// Contains returns true if the cell (i, j) is inside the raster
func (r *Raster) Contains(i, j int) bool {
	return i >= 0 && j >= 0 && i < r.Width && j < r.Height
}

// NearestValue samples the raster at the image coordinates (x, y) using
// nearest-neighbour interpolation, without wraparound.
// It returns false if (x, y) is outside the raster or if the nearest cell is nodata.
func (r *Raster) NearestValue(x, y float64) (float64, bool) {
	r.mustBeAlive()
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	fi, fj := math.Floor(x+0.5), math.Floor(y+0.5)
	if fi < 0 || fj < 0 || fi >= float64(r.Width) || fj >= float64(r.Height) {
		return 0, false
	}
	v := r.values[int(fj)*r.Width+int(fi)]
	if r.IsNoData(v) {
		return 0, false
	}
	return v, true
}

// Corners returns the world coordinates of the centers of the four corner cells,
// in the order (0,0), (0,H-1), (W-1,H-1), (W-1,0)
func (r *Raster) Corners() [4][2]float64 {
	xMax, yMax := float64(r.Width-1), float64(r.Height-1)
	var corners [4][2]float64
	for i, c := range [4][2]float64{{0, 0}, {0, yMax}, {xMax, yMax}, {xMax, 0}} {
		corners[i][0], corners[i][1] = r.Transform.Transform(c[0], c[1])
	}
	return corners
}

// Bounds returns the world bounding box [xMin, yMin, xMax, yMax] of the cell centers
func (r *Raster) Bounds() [4]float64 {
	c := r.Corners()
	xMin, xMax := utils.MinMaxElemF(c[0][0], c[1][0], c[2][0], c[3][0])
	yMin, yMax := utils.MinMaxElemF(c[0][1], c[1][1], c[2][1], c[3][1])
	return [4]float64{xMin, yMin, xMax, yMax}
}

// Footprint returns the polygon covered by the raster in world coordinates (cell edges)
func (r *Raster) Footprint() *geom.Polygon {
	corner := r.Transform.PixelCorner()
	w, h := float64(r.Width), float64(r.Height)
	var ring []geom.Coord
	for _, c := range [5][2]float64{{0, 0}, {0, h}, {w, h}, {w, 0}, {0, 0}} {
		x, y := corner.Transform(c[0], c[1])
		ring = append(ring, geom.Coord{x, y})
	}
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
}

// GDALGeoTransform returns the geotransform referencing the corner of the pixels, as expected by GDAL
func (r *Raster) GDALGeoTransform() [6]float64 {
	return [6]float64(*r.Transform.PixelCorner())
}

// Release invalidates the raster and frees its memory
func (r *Raster) Release() {
	r.values = nil
	r.released = true
}

// Released returns true if the raster cannot be used anymore
func (r *Raster) Released() bool {
	return r.released
}

func (r *Raster) mustBeAlive() {
	if r.released {
		panic(ErrReleased)
	}
}
