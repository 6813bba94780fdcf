// Package to handle 2D affine transformations, following GDAL affine convention
//
// An Affine maps (x, y) to (a[0] + a[1]*x + a[2]*y, a[3] + a[4]*x + a[5]*y),
// that is world = A + B·(x, y) with A = (a[0], a[3]) and B = [[a[1], a[2]], [a[4], a[5]]].
package affine

import (
	"errors"
	"math"
	"math/big"
)

// ErrSingular is returned when the linear part of the transform cannot be inverted
var ErrSingular = errors.New("affine transform is not invertible")

// Affine follows the GDAL transform convention
type Affine [6]float64

func NewAffine(a, b, c, d, e, f float64) *Affine {
	res := Affine([6]float64{a, b, c, d, e, f})
	return &res
}

// FromOffsetMatrix creates the transform world = off + m·(x, y)
func FromOffsetMatrix(off [2]float64, m [2][2]float64) *Affine {
	return NewAffine(off[0], m[0][0], m[0][1], off[1], m[1][0], m[1][1])
}

// Identity returns the identity transform
func Identity() *Affine {
	return NewAffine(0, 1, 0, 0, 0, 1)
}

// Translation creates a translation transform from (offx, offy)
func Translation(offx, offy float64) *Affine {
	return NewAffine(offx, 1.0, 0, offy, 0, 1.0)
}

// Scale creates a scale transform from (scalex, scaley)
func Scale(scalex, scaley float64) *Affine {
	return NewAffine(0, scalex, 0, 0, 0, scaley)
}

// Rx returns the X resolution
func (a *Affine) Rx() float64 {
	return float64(a[1])
}

// Ry returns the Y resolution
func (a *Affine) Ry() float64 {
	return float64(a[5])
}

// Offset returns the vector A
func (a *Affine) Offset() [2]float64 {
	return [2]float64{a[0], a[3]}
}

// Matrix returns the linear part B
func (a *Affine) Matrix() [2][2]float64 {
	return [2][2]float64{{a[1], a[2]}, {a[4], a[5]}}
}

// Det returns the determinant of the linear part
func (a *Affine) Det() float64 {
	return a[1]*a[5] - a[2]*a[4]
}

// IsInvertible returns true if the transformation is invertible
func (a *Affine) IsInvertible() bool {
	det := a.Det()
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// IsAxisAligned returns true if the rotation/shear terms are null
func (a *Affine) IsAxisAligned() bool {
	return a[2] == 0 && a[4] == 0
}

// Inverse creates the inverse of the affine transform.
// Inverse panics if it is not inversible
func (a *Affine) Inverse() *Affine {
	if !a.IsInvertible() {
		panic(ErrSingular)
	}
	idet := 1.0 / a.Det()
	res := Affine([6]float64{0, a[5] * idet, -a[2] * idet, 0, -a[4] * idet, a[1] * idet})
	res[0], res[3] = res.Transform(-a[0], -a[3])
	return &res
}

// Invert returns the inverse of the affine transform or ErrSingular
func (a *Affine) Invert() (*Affine, error) {
	if !a.IsInvertible() {
		return nil, ErrSingular
	}
	return a.Inverse(), nil
}

// PixelCenter converts a GDAL geotransform (referencing the corner of the pixels)
// to a transform referencing the center of the pixels.
func (a *Affine) PixelCenter() *Affine {
	return a.Multiply(Translation(0.5, 0.5))
}

// PixelCorner is the inverse operation of PixelCenter
func (a *Affine) PixelCorner() *Affine {
	return a.Multiply(Translation(-0.5, -0.5))
}

const (
	prec = 128
)

// highPrecisionTransform, such as highPrecisionTransform(xs, x+1, sy, y+1, o) = highPrecisionTransform(xs, x, sy, y, o) + highPrecisionTransform(xs, 1, sy, 1, 0)
func highPrecisionTransform(sx, x, sy, y, o float64) float64 {
	sX := big.NewFloat(sx).SetPrec(prec)
	sY := big.NewFloat(sy).SetPrec(prec)
	X := big.NewFloat(x).SetPrec(prec)
	Y := big.NewFloat(y).SetPrec(prec)
	O := big.NewFloat(o).SetPrec(prec)
	r, _ := O.Add(O, sX.Mul(sX, X)).Add(O, sY.Mul(sY, Y)).Float64() // o + sx*x + sy*y
	return r
}

// Multiply merges the two affines transforms into one.
func (a *Affine) Multiply(b *Affine) *Affine {
	return NewAffine(
		highPrecisionTransform(a[1], b[0], a[2], b[3], a[0]),
		highPrecisionTransform(a[1], b[1], a[2], b[4], 0),
		highPrecisionTransform(a[1], b[2], a[2], b[5], 0),
		highPrecisionTransform(a[4], b[0], a[5], b[3], a[3]),
		highPrecisionTransform(a[4], b[1], a[5], b[4], 0),
		highPrecisionTransform(a[4], b[2], a[5], b[5], 0),
	)
}

// Transform applies the affine transform to the point (x, y)
func (a *Affine) Transform(x float64, y float64) (float64, float64) {
	return highPrecisionTransform(a[1], x, a[2], y, a[0]), highPrecisionTransform(a[4], x, a[5], y, a[3])
}
