package svc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/gridio/interface/storage"
	"github.com/airbusgeo/gridio/interface/storage/uri"
	"github.com/airbusgeo/gridio/internal/drivers"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/log"
	"go.uber.org/zap"
)

// ExportRequest describes the export of vector layers into a file
type ExportRequest struct {
	Source string
	// Layers to export (all if empty)
	Layers []string
	// Destination is a local path or a gs:// or s3:// uri
	Destination string
	// Format is the name of the output driver. If empty, it is inferred from the extension of the destination
	Format               string
	CreationOptions      []string
	LayerCreationOptions []string
	TargetSRS            string
}

// Exporter passes vector layers through to a writable vector driver
type Exporter struct {
	drivers    *drivers.Table
	translator image.VectorTranslator
	strategy   storage.Strategy
}

// NewExporter creates an Exporter.
// strategy is used to upload remote destinations. If nil, it is inferred from the destination uri.
func NewExporter(table *drivers.Table, translator image.VectorTranslator, strategy storage.Strategy) *Exporter {
	return &Exporter{drivers: table, translator: translator, strategy: strategy}
}

// OutputFormat returns the writable vector driver to be used for the request
// Returns a CreateFailed error if there is none.
func (e *Exporter) OutputFormat(req ExportRequest) (drivers.Driver, error) {
	var d drivers.Driver
	var ok bool
	if req.Format != "" {
		d, ok = e.drivers.Resolve(req.Format)
	} else if ext := filepath.Ext(req.Destination); ext != "" {
		d, ok = e.drivers.ByExtension(ext)
	}
	if !ok {
		return d, gridio.NewCreateFailed(nil, "unknown output format %q for %s", req.Format, req.Destination)
	}
	if !d.Vector || !d.Writable() {
		return d, gridio.NewCreateFailed(nil, "driver %s cannot write vector files (writable vector drivers: %s)", d.Name, e.writableNames())
	}
	return d, nil
}

func (e *Exporter) writableNames() string {
	var names []string
	for _, d := range e.drivers.WritableVector() {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

// Export writes the selected layers of the source into the destination and returns the number of features written
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (int, error) {
	d, err := e.OutputFormat(req)
	if err != nil {
		return 0, err
	}
	ctx = log.With(ctx, "destination", req.Destination)

	dest, err := uri.ParseUri(req.Destination)
	if err != nil {
		return 0, gridio.NewCreateFailed(err, "Could not create data source %s", req.Destination)
	}

	translate := image.VectorTranslateRequest{
		Source:               req.Source,
		Destination:          req.Destination,
		Format:               d.Name,
		Layers:               req.Layers,
		TargetSRS:            req.TargetSRS,
		CreationOptions:      req.CreationOptions,
		LayerCreationOptions: req.LayerCreationOptions,
	}

	if !dest.IsRemote() {
		n, err := e.translator.Translate(ctx, translate)
		if err != nil {
			return 0, err
		}
		log.Logger(ctx).Info("vector exported", zap.String("format", d.Name), zap.Int("features", n))
		return n, nil
	}

	tmpDir, err := os.MkdirTemp("", "gridio-export-")
	if err != nil {
		return 0, gridio.NewCreateFailed(err, "Could not create data source %s", req.Destination)
	}
	defer os.RemoveAll(tmpDir)

	translate.Destination = filepath.Join(tmpDir, dest.FileName())
	n, err := e.translator.Translate(ctx, translate)
	if err != nil {
		return 0, err
	}
	if err := e.upload(ctx, tmpDir, dest); err != nil {
		return 0, gridio.NewCreateFailed(err, "upload %s", req.Destination)
	}
	log.Logger(ctx).Info("vector exported", zap.String("format", d.Name), zap.Int("features", n))
	return n, nil
}

// upload copies all the files written in dir next to dest (some formats create sidecar files)
func (e *Exporter) upload(ctx context.Context, dir string, dest uri.DefaultUri) error {
	strategy := e.strategy
	if strategy == nil {
		var err error
		if strategy, err = dest.NewStorageStrategy(ctx); err != nil {
			return err
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	parent := strings.TrimSuffix(dest.String(), dest.FileName())
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		target := parent + entry.Name()
		log.Logger(ctx).Debug("uploading", zap.String("uri", target))
		err = strategy.UploadFile(ctx, target, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}
