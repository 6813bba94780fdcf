package svc

import (
	"context"
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/log"
	"github.com/airbusgeo/gridio/internal/regrid"
	"github.com/airbusgeo/gridio/internal/utils"
	"github.com/airbusgeo/gridio/internal/utils/proj"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
)

// ProgressFunc reports the progress of the regridding of a grid
type ProgressFunc func(ctx context.Context, grid string, row, rows int)

// LogProgress logs the progress of a regridding at debug level, every tenth of the rows
func LogProgress(ctx context.Context, grid string, row, rows int) {
	if row == rows || row*10/rows != (row-1)*10/rows {
		log.Logger(ctx).Debug("regridding", zap.String("grid", grid), zap.Int("row", row), zap.Int("rows", rows))
	}
}

// Importer loads raster files into grids
type Importer struct {
	opener     image.Opener
	selector   Selector
	regridder  *regrid.Regridder
	progress   ProgressFunc
	host       Host
	projection string
}

type ImporterOption func(imp *Importer) error

// WithSelector sets the selector of sub-datasets (default: SelectAll)
func WithSelector(s Selector) ImporterOption {
	return func(imp *Importer) error {
		imp.selector = s
		return nil
	}
}

// WithRegridder sets the regridder used for rotated or sheared rasters (default: regrid.New())
func WithRegridder(r *regrid.Regridder) ImporterOption {
	return func(imp *Importer) error {
		imp.regridder = r
		return nil
	}
}

// WithProgress sets the function reporting the progress of the regridding (default: LogProgress)
func WithProgress(p ProgressFunc) ImporterOption {
	return func(imp *Importer) error {
		imp.progress = p
		return nil
	}
}

// WithHost sets the host receiving the grids of an owned GridList
func WithHost(h Host) ImporterOption {
	return func(imp *Importer) error {
		imp.host = h
		return nil
	}
}

// WithProjection overrides the projection of the imported datasets (EPSG code, proj4 or WKT)
func WithProjection(crs string) ImporterOption {
	return func(imp *Importer) error {
		w, err := proj.WKTFromUserInput(crs)
		if err != nil {
			return fmt.Errorf("WithProjection(%s): %w", crs, err)
		}
		imp.projection = w
		return nil
	}
}

// NewImporter creates an importer opening the files with opener
func NewImporter(opener image.Opener, opts ...ImporterOption) (*Importer, error) {
	imp := &Importer{
		opener:    opener,
		selector:  SelectAll,
		regridder: regrid.New(),
		progress:  LogProgress,
	}
	for _, opt := range opts {
		if err := opt(imp); err != nil {
			return nil, err
		}
	}
	return imp, nil
}

// Import loads every band of every file into grids, and returns the number of grids produced.
//
// A file that cannot be loaded is logged and skipped: the errors are merged and returned
// alongside the number of grids, so that the run is a success if at least one grid has been
// produced. A cancellation stops the import.
// The rasters of an owned list are released before the import.
func (imp *Importer) Import(ctx context.Context, paths []string, grids *gridio.GridList) (int, error) {
	if grids.Owned {
		grids.Release()
	}
	var errs error
	n := 0
	for _, path := range paths {
		fctx := log.With(ctx, "file", path)
		produced, err := imp.importFile(fctx, path, grids)
		n += produced
		if err != nil {
			errs = utils.MergeErrors(true, errs, err)
			if gridio.IsError(err, gridio.Cancelled) {
				return n, errs
			}
			log.Logger(fctx).Error("import failed", zap.Error(err))
		}
	}
	if n == 0 && errs == nil {
		errs = gridio.NewNoDataSelected("no grid imported")
	}
	return n, errs
}

func (imp *Importer) importFile(ctx context.Context, path string, grids *gridio.GridList) (int, error) {
	ds, err := imp.opener.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer ds.Close()

	if ds.BandCount() > 0 {
		return imp.loadDataset(ctx, ds, path, grids)
	}

	subDatasets := gridio.ParseSubDatasets(ds.SubDatasetMetadata())
	if len(subDatasets) == 0 {
		return 0, gridio.NewNoDataSelected("%s: no band and no sub-dataset", path)
	}
	log.Logger(ctx).Sugar().Debugf("%d sub-datasets found", len(subDatasets))
	selected, err := imp.selector.Select(ctx, path, subDatasets)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, gridio.NewCancelled(err, "%s: sub-dataset selection", path)
		}
		return 0, fmt.Errorf("%s: sub-dataset selection: %w", path, err)
	}
	if len(selected) == 0 {
		return 0, gridio.NewNoDataSelected("%s: no sub-dataset selected", path)
	}

	var errs error
	n := 0
	for _, sd := range selected {
		sctx := log.With(ctx, "subdataset", sd.Name)
		produced, err := imp.loadSubDataset(sctx, sd, grids)
		n += produced
		if err != nil {
			errs = utils.MergeErrors(true, errs, err)
			if gridio.IsError(err, gridio.Cancelled) {
				return n, errs
			}
			log.Logger(sctx).Error("sub-dataset import failed", zap.Error(err))
		}
	}
	return n, errs
}

func (imp *Importer) loadSubDataset(ctx context.Context, sd gridio.SubDataset, grids *gridio.GridList) (int, error) {
	ds, err := imp.opener.Open(ctx, sd.Name)
	if err != nil {
		return 0, err
	}
	defer ds.Close()
	return imp.loadDataset(ctx, ds, sd.Description, grids)
}

// loadDataset reads the bands of ds into grids named after name
func (imp *Importer) loadDataset(ctx context.Context, ds image.Dataset, name string, grids *gridio.GridList) (int, error) {
	lg := log.Logger(ctx)
	w, h := ds.Size()
	nb := ds.BandCount()
	gt, err := ds.GeoTransform()
	if err != nil {
		lg.Debug("no geotransform, using identity", zap.Error(err))
		gt = image.DefaultGeoTransform
	}
	lg.Debug("loading dataset",
		zap.Int("cells", w*h),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("bands", nb),
		zap.Float64s("transformation", gt[:]))

	projection := ds.Projection()
	if imp.projection != "" {
		projection = imp.projection
	}
	if projection != "" {
		if pretty, err := proj.PrettyWKT(projection); err == nil {
			lg.Debug("projection:\n" + pretty)
		} else {
			lg.Debug("projection: "+projection, zap.Error(err))
		}
	}

	needsRegrid := !gt.IsAxisAligned()
	n := 0
	for i := 0; i < nb; i++ {
		r, err := ds.ReadBand(ctx, i)
		if err != nil {
			if gridio.IsError(err, gridio.Cancelled) {
				return n, err
			}
			lg.Warn("band skipped", zap.Int("band", i+1), zap.Error(err))
			continue
		}
		r.Name = name
		if nb > 1 {
			r.Name = fmt.Sprintf("%s [%02d]", name, i+1)
		}
		r.Projection = projection
		if needsRegrid {
			if r, err = imp.regrid(ctx, r); err != nil {
				return n, err
			}
		}
		imp.logFootprint(ctx, r)
		grids.Add(r)
		n++
		if grids.Owned && imp.host != nil {
			if err := imp.host.AddGrid(ctx, r); err != nil {
				return n, fmt.Errorf("%s: %w", r.Name, err)
			}
		}
	}
	if n == 0 && nb > 0 {
		return 0, gridio.NewReadFailed(nil, "%s: no band could be read", name)
	}
	return n, nil
}

// regrid maps r onto an axis-aligned grid, reporting the progress under the name of r
func (imp *Importer) regrid(ctx context.Context, r *gridio.Raster) (*gridio.Raster, error) {
	rg := *imp.regridder
	name, progress := r.Name, rg.Progress
	rg.Progress = func(row, rows int) {
		if progress != nil {
			progress(row, rows)
		}
		if imp.progress != nil {
			imp.progress(ctx, name, row, rows)
		}
	}
	log.Logger(ctx).Debug("regridding", zap.String("grid", name), zap.Int("width", r.Width), zap.Int("height", r.Height))
	return rg.Regrid(ctx, r, r.Transform)
}

// logFootprint logs the lon/lat footprint of the grid, if its projection is known
func (imp *Importer) logFootprint(ctx context.Context, r *gridio.Raster) {
	lg := log.Logger(ctx)
	if r.Projection == "" || !lg.Core().Enabled(zap.DebugLevel) {
		return
	}
	crs, err := godal.NewSpatialRefFromWKT(r.Projection)
	if err != nil {
		return
	}
	defer crs.Close()
	footprint, err := proj.LonLatFootprint(r.Footprint(), crs)
	if err != nil {
		lg.Debug("footprint", zap.Error(err))
		return
	}
	if s, err := wkt.Marshal(footprint); err == nil {
		lg.Debug("grid loaded", zap.String("grid", r.Name), zap.Int("width", r.Width), zap.Int("height", r.Height), zap.String("footprint", s))
	}
}
