package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/airbusgeo/gridio/cmd"
	"github.com/airbusgeo/gridio/interface/storage"
	"github.com/airbusgeo/gridio/interface/storage/s3"
	"github.com/airbusgeo/gridio/interface/storage/uri"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/log"
	"github.com/airbusgeo/gridio/internal/regrid"
	"github.com/airbusgeo/gridio/internal/svc"
	"github.com/airbusgeo/gridio/internal/tui"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// importConfig is the configuration of an import. It can be loaded from a yaml job file,
// the command-line flags taking precedence.
type importConfig struct {
	Files       []string `yaml:"files"`
	Output      string   `yaml:"output"`
	SelectRegex string   `yaml:"selectRegexp"`
	SelectIndex string   `yaml:"selectIndex"`
	Interactive bool     `yaml:"interactive"`
	CRS         string   `yaml:"crs"`
	CellSize    string   `yaml:"cellSize"`
	MaxCells    int      `yaml:"maxCells"`
	Bundle      string   `yaml:"bundle"`
	Overwrite   bool     `yaml:"overwrite"`
	Workers     int      `yaml:"workers"`
	// StorageClass of the uploaded files (gs and s3 only)
	StorageClass string `yaml:"storageClass"`
	Cog          struct {
		BlockSize        int               `yaml:"blockSize"`
		Compression      string            `yaml:"compression"`
		OverviewsMinSize int               `yaml:"overviewsMinSize"`
		Resampling       string            `yaml:"resampling"`
		CreationParams   map[string]string `yaml:"creationParams"`
	} `yaml:"cog"`
}

func defaultImportConfig() importConfig {
	c := importConfig{
		CellSize: "min-diagonal",
		MaxCells: regrid.DefaultMaxCells,
		Workers:  4,
	}
	c.Cog.BlockSize = 256
	c.Cog.Compression = string(image.CompressionLOSSLESS)
	c.Cog.Resampling = "near"
	return c
}

// jobFile returns the value of the -job flag, which must be known before the other flags are registered
func jobFile(args []string) string {
	for i, a := range args {
		a = strings.TrimLeft(a, "-")
		if a == "job" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, "job=") {
			return strings.TrimPrefix(a, "job=")
		}
	}
	return ""
}

// loadImportConfig reads the job file, which can be a local path or a gs:// or s3:// uri
func loadImportConfig(ctx context.Context, path string) (importConfig, error) {
	c := defaultImportConfig()
	if path == "" {
		return c, nil
	}
	u, err := uri.ParseUri(path)
	if err != nil {
		return c, fmt.Errorf("job file: %w", err)
	}
	b, err := u.Download(ctx)
	if err != nil {
		return c, fmt.Errorf("read job file: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse job file %s: %w", path, err)
	}
	return c, nil
}

func (c importConfig) cellSizeStrategy() (regrid.CellSizeStrategy, error) {
	if s, ok := regrid.CellSizeStrategyFromString(c.CellSize); ok {
		return s, nil
	}
	z, err := strconv.ParseFloat(c.CellSize, 64)
	if err != nil || z <= 0 {
		return nil, fmt.Errorf("invalid cell size %q: expecting min-diagonal, pixel-area or a positive number", c.CellSize)
	}
	return regrid.Fixed(z), nil
}

func (c importConfig) regridder() (*regrid.Regridder, error) {
	cellSize, err := c.cellSizeStrategy()
	if err != nil {
		return nil, err
	}
	if c.MaxCells <= 0 {
		return nil, fmt.Errorf("invalid maximum number of cells %d", c.MaxCells)
	}
	r := regrid.New()
	r.CellSize = cellSize
	r.MaxCells = c.MaxCells
	return r, nil
}

func (c importConfig) selector() (svc.Selector, error) {
	switch {
	case c.Interactive:
		return tui.Dialog{}, nil
	case c.SelectRegex != "":
		return svc.NewRegexpSelector(c.SelectRegex)
	case c.SelectIndex != "":
		return svc.ParseIndexSelector(c.SelectIndex)
	}
	return svc.SelectAll, nil
}

func (c importConfig) cogOptions() (image.CogOptions, error) {
	opts := image.CogOptions{
		BlockSize:        c.Cog.BlockSize,
		Compression:      image.Compression(strings.ToUpper(c.Cog.Compression)),
		OverviewsMinSize: c.Cog.OverviewsMinSize,
		Resampling:       c.Cog.Resampling,
		CreationParams:   c.Cog.CreationParams,
	}
	switch opts.Compression {
	case image.CompressionNO, image.CompressionLOSSLESS, image.CompressionLOSSY:
	default:
		return opts, fmt.Errorf("invalid compression %q", c.Cog.Compression)
	}
	if _, err := image.ResamplingFromString(opts.Resampling); err != nil {
		return opts, err
	}
	return opts, nil
}

// storageStrategy returns the strategy to write into output, configured with the aws flags for s3
func storageStrategy(ctx context.Context, output string, gdalConfig *cmd.GDALConfig) (storage.Strategy, error) {
	u, err := uri.ParseUri(output)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(u.Protocol(), "s3") {
		cfg, err := gdalConfig.AWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return s3.NewS3StrategyFromConfig(cfg), nil
	}
	return u.NewStorageStrategy(ctx)
}

func runImport(ctx context.Context, args []string) error {
	c, err := loadImportConfig(ctx, jobFile(args))
	if err != nil {
		return err
	}
	fs, common := newFlagSet("import")
	fs.String("job", "", "yaml job file (flags take precedence)")
	fs.StringVar(&c.Output, "out", c.Output, "output directory or bucket uri (gs://, s3://)")
	fs.StringVar(&c.SelectRegex, "select-regexp", c.SelectRegex, "import the sub-datasets whose name or description matches the regexp")
	fs.StringVar(&c.SelectIndex, "select-index", c.SelectIndex, "import the sub-datasets by index (e.g. 1,3-5)")
	fs.BoolVar(&c.Interactive, "interactive", c.Interactive, "choose the sub-datasets in a dialog")
	fs.StringVar(&c.CRS, "crs", c.CRS, "override the projection of the files (EPSG:xxxx, proj4 or WKT)")
	fs.StringVar(&c.CellSize, "cell-size", c.CellSize, "cell size of regridded rasters: min-diagonal, pixel-area or a value")
	fs.IntVar(&c.MaxCells, "max-cells", c.MaxCells, "maximum number of cells of a regridded raster")
	fs.StringVar(&c.Bundle, "bundle", c.Bundle, "write all the grids in one multi-COG file with this name")
	fs.BoolVar(&c.Overwrite, "overwrite", c.Overwrite, "overwrite existing files")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of parallel uploads")
	fs.StringVar(&c.StorageClass, "storage-class", c.StorageClass, "storage class of the uploaded files (e.g. NEARLINE, STANDARD_IA)")
	fs.IntVar(&c.Cog.BlockSize, "block-size", c.Cog.BlockSize, "COG block size")
	fs.StringVar(&c.Cog.Compression, "compression", c.Cog.Compression, "COG compression: NO, LOSSLESS or LOSSY")
	fs.IntVar(&c.Cog.OverviewsMinSize, "overviews-min-size", c.Cog.OverviewsMinSize, "size of the smallest overview (0: 256, <0: no overview)")
	fs.StringVar(&c.Cog.Resampling, "resampling", c.Cog.Resampling, "resampling of the overviews")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Files = append(c.Files, fs.Args()...)
	if len(c.Files) == 0 {
		return fmt.Errorf("missing files to import")
	}
	if c.Output == "" {
		return fmt.Errorf("missing -out")
	}
	if err := common.init(ctx); err != nil {
		return err
	}

	regridder, err := c.regridder()
	if err != nil {
		return err
	}
	selector, err := c.selector()
	if err != nil {
		return err
	}
	cogOptions, err := c.cogOptions()
	if err != nil {
		return err
	}
	strategy, err := storageStrategy(ctx, c.Output, common.gdalConfig)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	writer, err := svc.NewGridWriter(ctx, image.NewCogGenerator(), image.NewMucogGenerator(), strategy, svc.GridWriterOptions{
		Output:       c.Output,
		Cog:          cogOptions,
		Bundle:       c.Bundle,
		Overwrite:    c.Overwrite,
		Workers:      c.Workers,
		StorageClass: c.StorageClass,
	})
	if err != nil {
		return err
	}

	opts := []svc.ImporterOption{svc.WithSelector(selector), svc.WithRegridder(regridder), svc.WithHost(writer)}
	if c.CRS != "" {
		opts = append(opts, svc.WithProjection(c.CRS))
	}
	importer, err := svc.NewImporter(image.NewGDALOpener(common.driverTable()), opts...)
	if err != nil {
		return err
	}

	grids := gridio.NewGridList(true)
	defer grids.Release()
	n, importErr := importer.Import(ctx, c.Files, grids)
	written, err := writer.Close(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return importErr
	}
	if importErr != nil {
		log.Logger(ctx).Warn("some files have not been imported", zap.Error(importErr))
	}
	log.Logger(ctx).Info("import done", zap.Int("grids", n), zap.Strings("files", written))
	return nil
}
