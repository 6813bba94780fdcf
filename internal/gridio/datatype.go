package gridio

//go:generate enumer -json -type DType -trimprefix DType

import (
	"math"

	"github.com/airbusgeo/godal"
)

// DType is one of supported DataTypes for raster cells
type DType int

// Supported DataTypes
const (
	DTypeUNDEFINED DType = iota
	DTypeUINT8
	DTypeUINT16
	DTypeUINT32
	DTypeINT8
	DTypeINT16
	DTypeINT32
	DTypeFLOAT32
	DTypeFLOAT64
)

var minValues = [...]float64{-math.MaxFloat64, 0, 0, 0, math.MinInt8, math.MinInt16, math.MinInt32, -math.MaxFloat32, -math.MaxFloat64}

var maxValues = [...]float64{math.MaxFloat64, math.MaxUint8, math.MaxUint16, math.MaxUint32, math.MaxInt8, math.MaxInt16, math.MaxInt32,
	math.MaxFloat32, math.MaxFloat64}

func (dtype DType) minValue() float64 {
	return minValues[dtype]
}

func (dtype DType) maxValue() float64 {
	return maxValues[dtype]
}

func (dtype DType) IsFloatingPointFormat() bool {
	switch dtype {
	case DTypeFLOAT32, DTypeFLOAT64:
		return true
	}
	return false
}

// Cast converts v to the nearest value representable by dtype.
// NaN is kept for floating point formats and mapped to 0 otherwise.
func (dtype DType) Cast(v float64) float64 {
	if math.IsNaN(v) {
		if dtype.IsFloatingPointFormat() || dtype == DTypeUNDEFINED {
			return v
		}
		return 0
	}
	switch dtype {
	case DTypeFLOAT32:
		if math.IsInf(v, 0) {
			return v
		}
		return float64(float32(math.Min(math.Max(v, dtype.minValue()), dtype.maxValue())))
	case DTypeFLOAT64, DTypeUNDEFINED:
		return v
	}
	return math.Min(math.Max(math.Round(v), dtype.minValue()), dtype.maxValue())
}

// DefaultNoData returns the nodata value used when a grid must represent
// missing cells but its source did not define any.
func (dtype DType) DefaultNoData() float64 {
	switch dtype {
	case DTypeUINT8, DTypeUINT16, DTypeUINT32:
		return dtype.maxValue()
	case DTypeINT8, DTypeINT16, DTypeINT32:
		return dtype.minValue()
	}
	return math.NaN()
}

// Promote returns a type able to store all the values of dtype plus its own default nodata
func (dtype DType) Promote() DType {
	switch dtype {
	case DTypeUINT8, DTypeINT8:
		return DTypeINT16
	case DTypeUINT16, DTypeINT16:
		return DTypeINT32
	case DTypeUINT32, DTypeINT32, DTypeFLOAT32:
		return DTypeFLOAT64
	}
	return dtype
}

// ToGDAL returns the GDAL type used to store dtype
func (dtype DType) ToGDAL() godal.DataType {
	switch dtype {
	case DTypeUINT8:
		return godal.Byte
	case DTypeUINT16:
		return godal.UInt16
	case DTypeUINT32:
		return godal.UInt32
	case DTypeINT8, DTypeINT16:
		// signed bytes are stored on 16 bits
		return godal.Int16
	case DTypeINT32:
		return godal.Int32
	case DTypeFLOAT32:
		return godal.Float32
	case DTypeFLOAT64:
		return godal.Float64
	default:
		return godal.Unknown
	}
}

// DTypeFromGDal convert gdal.DataType to DType
func DTypeFromGDal(dtype godal.DataType) DType {
	switch dtype {
	case godal.Byte:
		return DTypeUINT8
	case godal.UInt16:
		return DTypeUINT16
	case godal.UInt32:
		return DTypeUINT32
	case godal.Int16:
		return DTypeINT16
	case godal.Int32:
		return DTypeINT32
	case godal.Float32:
		return DTypeFLOAT32
	case godal.Float64:
		return DTypeFLOAT64
	default:
		// complex types are read as their real part
		return DTypeFLOAT64
	}
}
