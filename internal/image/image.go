package image

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/drivers"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/utils/affine"
)

var ErrLogger = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("GDAL %d: %s", code, msg)
})

// DefaultGeoTransform is the geotransform of datasets without georeferencing
var DefaultGeoTransform = affine.NewAffine(0, 1, 0, 0, 0, 1)

// Dataset is an opened raster dataset
type Dataset interface {
	// Name is the name used to open the dataset
	Name() string
	// Size returns the width and the height in pixels
	Size() (int, int)
	BandCount() int
	// GeoTransform returns the pixel-to-world transform (GDAL convention, referencing the corner of the pixels)
	GeoTransform() (*affine.Affine, error)
	// Projection returns the WKT of the projection (can be empty)
	Projection() string
	// SubDatasetMetadata returns the content of the SUBDATASETS metadata domain as "KEY=VALUE" lines
	SubDatasetMetadata() []string
	// ReadBand reads the band #i (0-based)
	ReadBand(ctx context.Context, i int) (*gridio.Raster, error)
	Close() error
}

// Opener opens raster datasets
type Opener interface {
	Open(ctx context.Context, name string) (Dataset, error)
}

// GDALOpener opens datasets with GDAL
type GDALOpener struct {
	// Drivers restricts the drivers allowed to open the files (all the registered drivers if empty)
	Drivers []string
}

// NewGDALOpener returns an opener restricted to the raster drivers of the table
func NewGDALOpener(table *drivers.Table) GDALOpener {
	return GDALOpener{Drivers: table.RasterNames()}
}

// Open implements Opener
// Returns a NoSuitableDriver error if the file cannot be opened by any driver
func (o GDALOpener) Open(ctx context.Context, name string) (Dataset, error) {
	opts := []godal.OpenOption{godal.RasterOnly(), ErrLogger}
	if len(o.Drivers) > 0 {
		opts = append(opts, godal.Drivers(o.Drivers...))
	}
	ds, err := godal.Open(name, opts...)
	if err != nil {
		return nil, gridio.NewNoSuitableDriver(err, "open %s", name)
	}
	return &gdalDataset{name: name, ds: ds}, nil
}

type gdalDataset struct {
	name string
	ds   *godal.Dataset
}

func (d *gdalDataset) Name() string {
	return d.name
}

func (d *gdalDataset) Size() (int, int) {
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

func (d *gdalDataset) BandCount() int {
	return d.ds.Structure().NBands
}

func (d *gdalDataset) GeoTransform() (*affine.Affine, error) {
	gt, err := d.ds.GeoTransform()
	if err != nil {
		return DefaultGeoTransform, fmt.Errorf("GeoTransform[%s]: %w", d.name, err)
	}
	a := affine.Affine(gt)
	return &a, nil
}

func (d *gdalDataset) Projection() string {
	return d.ds.Projection()
}

func (d *gdalDataset) SubDatasetMetadata() []string {
	return SortedMetadata(d.ds.Metadatas(godal.Domain("SUBDATASETS")))
}

func (d *gdalDataset) ReadBand(ctx context.Context, i int) (*gridio.Raster, error) {
	bands := d.ds.Bands()
	if i < 0 || i >= len(bands) {
		return nil, gridio.NewReadFailed(nil, "%s: band %d does not exist", d.name, i+1)
	}
	if err := ctx.Err(); err != nil {
		return nil, gridio.NewCancelled(err, "%s: read band %d", d.name, i+1)
	}
	band := bands[i]
	st := band.Structure()
	r, err := gridio.NewRaster(gridio.DTypeFromGDal(st.DataType), st.SizeX, st.SizeY)
	if err != nil {
		return nil, gridio.NewReadFailed(err, "%s: band %d", d.name, i+1)
	}
	if err := band.Read(0, 0, r.Values(), st.SizeX, st.SizeY); err != nil {
		return nil, gridio.NewReadFailed(err, "%s: band %d", d.name, i+1)
	}
	if nodata, ok := band.NoData(); ok {
		r.SetNoData(nodata)
	}
	gt, _ := d.GeoTransform()
	r.Transform = gt.PixelCenter()
	r.Projection = d.ds.Projection()
	return r, nil
}

func (d *gdalDataset) Close() error {
	return d.ds.Close()
}

var metadataIndexRegexp = regexp.MustCompile(`^([A-Za-z]+)_(\d+)_(.*)$`)

// SortedMetadata returns the metadata as "KEY=VALUE" lines, sorted by numeric index
// for keys like PREFIX_<index>_SUFFIX, and alphabetically otherwise.
func SortedMetadata(md map[string]string) []string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		mi, mj := metadataIndexRegexp.FindStringSubmatch(keys[i]), metadataIndexRegexp.FindStringSubmatch(keys[j])
		if mi != nil && mj != nil && mi[1] == mj[1] {
			ni, _ := strconv.Atoi(mi[2])
			nj, _ := strconv.Atoi(mj[2])
			if ni != nj {
				return ni < nj
			}
			// NAME before DESC
			return mi[3] > mj[3]
		}
		return keys[i] < keys[j]
	})
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + md[k]
	}
	return lines
}

// EphemeralDataset is a dataset that is deleted when closed
type EphemeralDataset struct {
	*godal.Dataset
	URI string
}

// UnlinkDataset closes and unlinks dataset whether it's a /vsimem or physical uri
func UnlinkDataset(dataset *godal.Dataset, uri string) error {
	if dataset != nil {
		if err := dataset.Close(); err != nil {
			return err
		}
	}
	return godal.VSIUnlink(uri)
}

func (ds *EphemeralDataset) Close() error {
	err := UnlinkDataset(ds.Dataset, ds.URI)
	ds.Dataset = nil
	return err
}

func creationOptions(creationParams map[string]string, overview bool) []string {
	keys := make([]string, 0, len(creationParams))
	for k := range creationParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var options []string
	for _, k := range keys {
		if overview == strings.HasSuffix(k, "_OVERVIEW") {
			options = append(options, "-co", k+"="+creationParams[k])
		}
	}
	return options
}
