package main

import (
	"context"
	"fmt"

	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/log"
	"github.com/airbusgeo/gridio/internal/svc"
	"go.uber.org/zap"
)

func runExport(ctx context.Context, args []string) error {
	fs, common := newFlagSet("export")
	req := svc.ExportRequest{}
	var layers, dsco, lco stringsFlag
	fs.StringVar(&req.Source, "src", "", "source vector file")
	fs.StringVar(&req.Destination, "out", "", "output file (local path, gs:// or s3:// uri)")
	fs.StringVar(&req.Format, "f", "", "output driver (default: inferred from the extension of -out)")
	fs.StringVar(&req.TargetSRS, "t_srs", "", "reproject the features (EPSG:xxxx, proj4 or WKT)")
	fs.Var(&layers, "layer", "layer to export (repeatable, default: all)")
	fs.Var(&dsco, "dsco", "dataset creation option NAME=VALUE (repeatable)")
	fs.Var(&lco, "lco", "layer creation option NAME=VALUE (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Source == "" || req.Destination == "" {
		return fmt.Errorf("missing -src or -out")
	}
	if err := common.init(ctx); err != nil {
		return err
	}
	req.Layers, req.CreationOptions, req.LayerCreationOptions = layers, dsco, lco

	table := common.driverTable()

	strategy, err := storageStrategy(ctx, req.Destination, common.gdalConfig)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	n, err := svc.NewExporter(table, image.GDALVectorTranslator{}, strategy).Export(ctx, req)
	if err != nil {
		return err
	}
	log.Logger(ctx).Info("export done", zap.Int("features", n))
	return nil
}
