package svc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/airbusgeo/gridio/interface/storage"
	"github.com/airbusgeo/gridio/interface/storage/uri"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GridWriterOptions configures the persistence of the grids
type GridWriterOptions struct {
	// Output is a local directory or a gs:// or s3:// uri
	Output string
	Cog    image.CogOptions
	// Bundle is the file name of a multi-COG file gathering all the grids.
	// If defined, the grids are only written in the bundle.
	Bundle string
	// Overwrite existing files
	Overwrite bool
	// Workers is the maximum number of concurrent uploads (1 if <= 0)
	Workers int
	// StorageClass of the uploaded files (bucket default if empty)
	StorageClass string
}

// GridWriter is a Host writing every grid as a Cloud Optimized GeoTIFF
type GridWriter struct {
	cog      image.CogGenerator
	mucog    image.MucogGenerator
	strategy storage.Strategy
	output   uri.DefaultUri
	opts     GridWriterOptions
	tmpDir   string

	eg    *errgroup.Group
	egCtx context.Context

	mu      sync.Mutex
	names   map[string]struct{}
	cogs    []string
	written []string
}

// NewGridWriter creates a GridWriter. strategy is used to write the files into the output.
// If nil, it is inferred from the output uri.
// Close must be called to wait for the uploads.
func NewGridWriter(ctx context.Context, cog image.CogGenerator, mucog image.MucogGenerator, strategy storage.Strategy, opts GridWriterOptions) (*GridWriter, error) {
	output, err := uri.ParseUri(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("NewGridWriter: %w", err)
	}
	if strategy == nil {
		if strategy, err = output.NewStorageStrategy(ctx); err != nil {
			return nil, fmt.Errorf("NewGridWriter: %w", err)
		}
	}
	if opts.Bundle != "" && mucog == nil {
		return nil, fmt.Errorf("NewGridWriter: a MucogGenerator is required to write %s", opts.Bundle)
	}
	tmpDir, err := os.MkdirTemp("", "gridio-cog-")
	if err != nil {
		return nil, fmt.Errorf("NewGridWriter: %w", err)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	w := &GridWriter{
		cog:      cog,
		mucog:    mucog,
		strategy: strategy,
		output:   output,
		opts:     opts,
		tmpDir:   tmpDir,
		names:    map[string]struct{}{},
	}
	if opts.Bundle != "" {
		// the grids are written next to the bundle in the temporary directory
		w.names[opts.Bundle] = struct{}{}
	}
	w.eg, w.egCtx = errgroup.WithContext(ctx)
	w.eg.SetLimit(opts.Workers)
	return w, nil
}

const cogContentType = "image/tiff; application=geotiff; profile=cloud-optimized"

var fileNameRegexp = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns a file name for the grid, suffixed to be unique in the writer
func (w *GridWriter) FileName(gridName string) string {
	base := strings.Trim(fileNameRegexp.ReplaceAllString(gridName, "_"), "_.")
	if base == "" {
		base = "grid"
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	name := base + ".tif"
	for i := 2; ; i++ {
		if _, ok := w.names[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s_%d.tif", base, i)
	}
	w.names[name] = struct{}{}
	return name
}

// AddGrid implements Host
// The grid is written as a COG and validated. The upload is done in the background.
func (w *GridWriter) AddGrid(ctx context.Context, grid *gridio.Raster) error {
	if err := w.egCtx.Err(); err != nil {
		// a previous upload failed
		return fmt.Errorf("AddGrid: %w", err)
	}
	name := w.FileName(grid.Name)
	dest := w.output.Join(name)
	if w.opts.Bundle == "" {
		if err := w.checkOverwrite(ctx, dest.String()); err != nil {
			return err
		}
	}

	local := filepath.Join(w.tmpDir, name)
	if err := w.cog.Create(grid, w.opts.Cog, local); err != nil {
		os.Remove(local)
		return gridio.NewCreateFailed(err, "write %s", name)
	}
	if err := w.cog.Validate(ctx, local); err != nil {
		os.Remove(local)
		return gridio.NewCreateFailed(err, "invalid cog %s", name)
	}
	log.Logger(ctx).Debug("cog created", zap.String("grid", grid.Name), zap.String("file", local))

	if w.opts.Bundle != "" {
		w.mu.Lock()
		w.cogs = append(w.cogs, local)
		w.mu.Unlock()
		return nil
	}

	lctx := log.CopyContext(ctx, w.egCtx)
	w.eg.Go(func() error {
		return w.upload(lctx, local, dest.String())
	})
	return nil
}

func (w *GridWriter) checkOverwrite(ctx context.Context, dest string) error {
	if w.opts.Overwrite {
		return nil
	}
	exist, err := w.strategy.Exist(ctx, dest)
	if err != nil && !errors.Is(err, storage.ErrFileNotFound) {
		return fmt.Errorf("checkOverwrite[%s]: %w", dest, err)
	}
	if exist {
		return gridio.NewCreateFailed(nil, "%s already exists", dest)
	}
	return nil
}

func (w *GridWriter) uploadOptions(dest string) []storage.Option {
	opts := []storage.Option{storage.ContentType(cogContentType)}
	if w.opts.StorageClass != "" && w.output.IsRemote() {
		opts = append(opts, storage.StorageClass(w.opts.StorageClass))
	}
	return opts
}

func (w *GridWriter) upload(ctx context.Context, local, dest string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	err = w.strategy.UploadFile(ctx, dest, f, w.uploadOptions(dest)...)
	f.Close()
	if err != nil {
		return gridio.NewCreateFailed(err, "upload %s", dest)
	}
	os.Remove(local)
	log.Logger(ctx).Info("grid written", zap.String("uri", dest))
	w.mu.Lock()
	w.written = append(w.written, dest)
	w.mu.Unlock()
	return nil
}

// Close waits for the uploads, writes the bundle and removes the temporary files.
// It returns the uris of the files that have been written.
// If an upload fails, the files already written are deleted and Close returns the error.
func (w *GridWriter) Close(ctx context.Context) ([]string, error) {
	defer os.RemoveAll(w.tmpDir)
	if err := w.close(ctx); err != nil {
		w.rollback(ctx)
		return nil, err
	}
	return w.written, nil
}

func (w *GridWriter) close(ctx context.Context) error {
	if err := w.eg.Wait(); err != nil {
		return err
	}
	if len(w.cogs) == 0 {
		return nil
	}
	dest := w.output.Join(w.opts.Bundle)
	if err := w.checkOverwrite(ctx, dest.String()); err != nil {
		return err
	}
	local := filepath.Join(w.tmpDir, w.opts.Bundle)
	if err := w.mucog.Create(local, w.cogs); err != nil {
		return gridio.NewCreateFailed(err, "write %s", w.opts.Bundle)
	}
	return w.upload(ctx, local, dest.String())
}

// rollback deletes the files that have been uploaded
func (w *GridWriter) rollback(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, dest := range w.written {
		if err := w.strategy.Delete(ctx, dest, storage.IgnoreNotFound()); err != nil {
			log.Logger(ctx).Warn("failed to delete a partial output", zap.String("uri", dest), zap.Error(err))
		}
	}
	w.written = nil
}
