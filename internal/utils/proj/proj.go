package proj

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/twpayne/go-geom"
)

const (
	RadToDeg = 180 / math.Pi
	DegToRad = math.Pi / 180
)

// CreateLonLatProj create a CoordinateTransform from/to the geographic lon/lat coordinates
func CreateLonLatProj(crs *godal.SpatialRef, inverse bool) (*godal.Transform, error) {
	lonlatCRS, err := CRSFromEPSG(4326)
	if err != nil {
		return nil, fmt.Errorf("CreateLonLatProj.%w", err)
	}

	var tr *godal.Transform
	if inverse {
		tr, err = godal.NewTransform(crs, lonlatCRS)
	} else {
		tr, err = godal.NewTransform(lonlatCRS, crs)
	}
	if err != nil {
		return nil, fmt.Errorf("CreateLonLatProj: %w", err)
	}
	return tr, nil
}

// CRSFromUserInput initialize a crs from epsg, proj4 or Wkt format
// Return the SRID if known
func CRSFromUserInput(input string) (*godal.SpatialRef, int, error) {
	var err error
	var crs *godal.SpatialRef
	input = strings.TrimSpace(input)
	if epsg, err := strconv.Atoi(input); err == nil {
		crs, err = godal.NewSpatialRefFromEPSG(epsg)
		return crs, epsg, err
	}
	if strings.HasPrefix(strings.ToLower(input), "epsg:") {
		epsg, err := strconv.Atoi(input[5:])
		if err != nil {
			return nil, 0, err
		}
		crs, err = godal.NewSpatialRefFromEPSG(epsg)
		return crs, epsg, err
	}
	if strings.HasPrefix(input, "+") {
		crs, err = godal.NewSpatialRefFromProj4(input)
		if err != nil {
			return nil, 0, err
		}
		return crs, Srid(crs), nil
	}
	crs, err = godal.NewSpatialRefFromWKT(input)
	if err != nil {
		return nil, 0, err
	}
	return crs, Srid(crs), nil
}

// WKTFromUserInput returns the WKT of the crs defined by input (see CRSFromUserInput)
func WKTFromUserInput(input string) (string, error) {
	crs, _, err := CRSFromUserInput(input)
	if err != nil {
		return "", fmt.Errorf("WKTFromUserInput[%s]: %w", input, err)
	}
	defer crs.Close()
	return crs.WKT()
}

var crsEPSG map[int]*godal.SpatialRef = map[int]*godal.SpatialRef{}
var crsEPSGLock sync.Mutex

// CRSFromEPSG initialize a crs from epsg (only once per epsg)
// DO NOT release the crs (it is kept for further uses)
func CRSFromEPSG(epsg int) (*godal.SpatialRef, error) {
	crsEPSGLock.Lock()
	defer crsEPSGLock.Unlock()

	if crs, ok := crsEPSG[epsg]; ok && crs != nil {
		return crs, nil
	}

	crs, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return nil, fmt.Errorf("CRSFromEPSG: %w", err)
	}
	runtime.SetFinalizer(crs, func(crs *godal.SpatialRef) { crs.Close() })
	crsEPSG[epsg] = crs
	return crs, nil
}

// SRID returns the SRID from the crs or 0 if not found
// Warning : this function is not reliable...
func Srid(crs *godal.SpatialRef) int {
	if crs == nil {
		return 0
	}
	entities := []string{"PROJCS", "PROJCS", "LOCAL_CS", "GEOGCS"}
	for i, entity := range entities {
		if crs.AuthorityName(entity) == "EPSG" {
			if res, err := strconv.Atoi(crs.AuthorityCode(entity)); err == nil {
				return res
			}
		}
		if i == 0 {
			crs.AutoIdentifyEPSG()
		}
	}
	return 0
}

// FlatCoordToXY splits flat into two arrays x, y
func FlatCoordToXY(flat []float64) (x []float64, y []float64) {
	n := len(flat) / 2
	x = make([]float64, n)
	y = make([]float64, n)
	for i, j := 0, 0; i < n; i, j = i+1, j+2 {
		x[i], y[i] = flat[j], flat[j+1]
	}
	return x, y
}

// LonLatFootprint creates a polygon in 4326 coordinates that covers the footprint defined in crs.
// Edges are densified so that the error of the projection is lower than 1% of their length.
func LonLatFootprint(footprint *geom.Polygon, crs *godal.SpatialRef) (*geom.Polygon, error) {
	crsToLonLat, err := CreateLonLatProj(crs, true)
	if err != nil {
		return nil, fmt.Errorf("LonLatFootprint.%w", err)
	}
	defer crsToLonLat.Close()

	p := geom.NewPolygon(geom.XY)
	for i := 0; i < footprint.NumLinearRings(); i++ {
		r, err := ringTo4326(crsToLonLat, footprint.LinearRing(i))
		if err != nil {
			return nil, fmt.Errorf("LonLatFootprint.%w", err)
		}
		if err := p.Push(r); err != nil {
			return nil, fmt.Errorf("LonLatFootprint: %w", err)
		}
	}
	p.SetSRID(4326)
	return p, nil
}

func relativeAccuracy(project *godal.Transform, x, y, lon, lat []float64) ([]float64, error) {
	// Create the midpoints
	n := len(x) - 1
	lonm, latm, acc := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		lonm[i], latm[i] = (x[i]+x[i+1])/2, (y[i]+y[i+1])/2
	}
	if err := project.TransformEx(lonm, latm, make([]float64, n), nil); err != nil {
		return nil, err
	}
	// Estimate accuracy as a percentage of the length of each edge
	for i := 0; i < n; i++ {
		acc[i] = (lonLatDistance(lon[i], lat[i], lonm[i], latm[i]) + lonLatDistance(lon[i+1], lat[i+1], lonm[i], latm[i])) * accuracyPc
	}
	return acc, nil
}

// ringTo4326 creates a ring in 4326 coordinates that covers the ring in planar crs
func ringTo4326(crsToLonLat *godal.Transform, r *geom.LinearRing) (*geom.LinearRing, error) {
	project := projFromTransform(crsToLonLat)

	lon, lat := FlatCoordToXY(r.FlatCoords())
	if len(lon) < 2 {
		return nil, fmt.Errorf("ringTo4326: not enough points (%d)", len(lon))
	}
	if err := crsToLonLat.TransformEx(lon, lat, make([]float64, len(lon)), nil); err != nil {
		return nil, fmt.Errorf("ringTo4326: %w", err)
	}

	x, y := FlatCoordToXY(r.FlatCoords())
	accuracyInMeter, err := relativeAccuracy(crsToLonLat, x, y, lon, lat)
	if err != nil {
		return nil, fmt.Errorf("ringTo4326: %w", err)
	}

	// Densify projection
	pts := make([]float64, 0, 2*len(lon))
	for i := 0; i < len(accuracyInMeter); i++ {
		pts = append(pts, lon[i], lat[i])
		pts = append(pts, densifyEdge(project, x[i], y[i], x[i+1], y[i+1], lon[i], lat[i], lon[i+1], lat[i+1], accuracyInMeter[i], densifyMaxRecursion)...)
	}
	pts = append(pts, lon[0], lat[0])

	return geom.NewLinearRingFlat(geom.XY, pts), nil
}

// lonLatDistance returns the approximate distances in meter between two lon/lat points
func lonLatDistance(lon1, lat1, lon2, lat2 float64) float64 {
	earthRadius := 6371000.
	lon1, lat1, lon2, lat2 = DegToRad*lon1, DegToRad*lat1, DegToRad*lon2, DegToRad*lat2
	t := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	if t > 1 {
		return 0
	}
	return earthRadius * math.Acos(t)
}

type projection func(float64, float64) (float64, float64)

func projFromTransform(t *godal.Transform) projection {
	return func(x, y float64) (float64, float64) {
		tx, ty := []float64{x}, []float64{y}
		t.TransformEx(tx, ty, []float64{0}, nil)
		return tx[0], ty[0]
	}
}

const (
	accuracyPc          = 0.01
	densifyMaxRecursion = 5
)

// densifyEdge returns an array of flat lon/lat points so that the difference between
// the segment ([x1, y1], [x2, y2]) and the polyline (lon1, lat1], []returnedValue, lon2, lat2]) is lower than accuracy
func densifyEdge(projToLonLat projection, x1, y1, x2, y2, lon1, lat1, lon2, lat2, accuracy float64, recursion int) []float64 {
	xm, ym := (x1+x2)/2, (y1+y2)/2
	lonm, latm := projToLonLat(xm, ym)

	distance := lonLatDistance(lonm, latm, (lon1+lon2)/2, (lat1+lat2)/2)
	if distance <= accuracy {
		return nil
	}
	if recursion == 0 {
		return []float64{lonm, latm}
	}

	return append(append(
		densifyEdge(projToLonLat, x1, y1, xm, ym, lon1, lat1, lonm, latm, accuracy, recursion-1),
		lonm, latm),
		densifyEdge(projToLonLat, xm, ym, x2, y2, lonm, latm, lon2, lat2, accuracy, recursion-1)...)
}
