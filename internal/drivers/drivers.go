// Package drivers describes the capabilities of the GDAL/OGR drivers available in the process.
//
// The Table is built once at start-up and is read-only afterwards.
package drivers

import (
	"sort"
	"strings"

	"github.com/airbusgeo/godal"
)

// Driver describes a GDAL/OGR format driver
type Driver struct {
	Name       string // short name, as given to GDAL
	LongName   string
	Extensions []string
	Raster     bool
	Vector     bool
	Create     bool
	CreateCopy bool
}

// Writable returns true if the driver can create new files
func (d Driver) Writable() bool {
	return d.Create || d.CreateCopy
}

// DefaultNames is the list of drivers probed by Probe when no name is given
var DefaultNames = []string{
	// Raster
	"GTiff", "COG", "netCDF", "HDF4", "HDF5", "GRIB", "JP2OpenJPEG", "PNG", "JPEG", "AAIGrid", "EHdr", "ENVI", "HFA", "SAGA", "NITF", "VRT", "MEM",
	// Vector
	"ESRI Shapefile", "GPKG", "GeoJSON", "GeoJSONSeq", "FlatGeobuf", "KML", "LIBKML", "GML", "GPX", "CSV", "MapInfo File", "DXF", "SQLite", "OpenFileGDB", "Parquet",
}

// Table is an immutable set of drivers
type Table struct {
	drivers []Driver
	byName  map[string]int
	// open tables resolve the drivers they do not list by querying GDAL
	open bool
}

// NewTable creates a table from a list of drivers. Later duplicates are ignored.
func NewTable(drivers ...Driver) *Table {
	t := &Table{byName: map[string]int{}}
	for _, d := range drivers {
		key := strings.ToLower(d.Name)
		if _, ok := t.byName[key]; ok {
			continue
		}
		t.byName[key] = len(t.drivers)
		t.drivers = append(t.drivers, d)
	}
	return t
}

// Probe queries GDAL for the capabilities of the given drivers.
// Drivers that are not registered are ignored.
// Without names, the table lists DefaultNames but is not restrictive: Resolve falls back to
// any registered driver and RasterNames returns nil.
// GDAL drivers must be registered beforehand (godal.RegisterAll)
func Probe(names ...string) *Table {
	open := len(names) == 0
	if open {
		names = DefaultNames
	}
	var drivers []Driver
	for _, name := range names {
		if d, ok := ProbeDriver(name); ok {
			drivers = append(drivers, d)
		}
	}
	t := NewTable(drivers...)
	t.open = open
	return t
}

// ProbeDriver queries GDAL for the capabilities of one driver
func ProbeDriver(name string) (Driver, bool) {
	drv, ok := godal.RasterDriver(godal.DriverName(name))
	if !ok {
		if drv, ok = godal.VectorDriver(godal.DriverName(name)); !ok {
			return Driver{}, false
		}
	}
	return Driver{
		Name:       name,
		LongName:   drv.Metadata("DMD_LONGNAME"),
		Extensions: strings.Fields(drv.Metadata("DMD_EXTENSIONS")),
		Raster:     isYes(drv.Metadata("DCAP_RASTER")),
		Vector:     isYes(drv.Metadata("DCAP_VECTOR")),
		Create:     isYes(drv.Metadata("DCAP_CREATE")),
		CreateCopy: isYes(drv.Metadata("DCAP_CREATECOPY")),
	}, true
}

func isYes(s string) bool {
	return strings.EqualFold(s, "YES")
}

// Len returns the number of drivers
func (t *Table) Len() int {
	return len(t.drivers)
}

// All returns all the drivers, in the order of creation
func (t *Table) All() []Driver {
	return append([]Driver(nil), t.drivers...)
}

// Lookup returns the driver called name (case insensitive)
func (t *Table) Lookup(name string) (Driver, bool) {
	i, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return Driver{}, false
	}
	return t.drivers[i], true
}

// Resolve returns the driver called name. Tables returned by Probe() also resolve
// the registered drivers they do not list.
func (t *Table) Resolve(name string) (Driver, bool) {
	if d, ok := t.Lookup(name); ok {
		return d, true
	}
	if t.open {
		return ProbeDriver(name)
	}
	return Driver{}, false
}

// ByExtension returns the first vector driver handling files with the given extension (with or without the leading dot)
func (t *Table) ByExtension(ext string) (Driver, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, d := range t.drivers {
		if !d.Vector {
			continue
		}
		for _, e := range d.Extensions {
			if strings.ToLower(e) == ext {
				return d, true
			}
		}
	}
	return Driver{}, false
}

func (t *Table) filter(keep func(Driver) bool) []Driver {
	var res []Driver
	for _, d := range t.drivers {
		if keep(d) {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// Raster returns the raster drivers, sorted by name
func (t *Table) Raster() []Driver {
	return t.filter(func(d Driver) bool { return d.Raster })
}

// Vector returns the vector drivers, sorted by name
func (t *Table) Vector() []Driver {
	return t.filter(func(d Driver) bool { return d.Vector })
}

// WritableVector returns the vector drivers that can create files, sorted by name
func (t *Table) WritableVector() []Driver {
	return t.filter(func(d Driver) bool { return d.Vector && d.Writable() })
}

// RasterNames returns the names of the raster drivers allowed to open datasets,
// or nil if any registered driver is allowed.
func (t *Table) RasterNames() []string {
	if t.open {
		return nil
	}
	var names []string
	for _, d := range t.drivers {
		if d.Raster {
			names = append(names, d.Name)
		}
	}
	return names
}
