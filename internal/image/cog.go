package image

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/airbusgeo/cogger"
	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/utils"
	"github.com/google/tiff"
	"github.com/google/uuid"
)

// Compression of the COG files
type Compression string

const (
	CompressionNO       Compression = "NO"
	CompressionLOSSLESS Compression = "LOSSLESS"
	CompressionLOSSY    Compression = "LOSSY"
)

// CogOptions configures the layout of the COG files
type CogOptions struct {
	BlockSize   int // 256 if 0
	Compression Compression
	// OverviewsMinSize is the size of the smallest overview (256 if 0, no overview if negative)
	OverviewsMinSize int
	// Resampling algorithm used to build the overviews (nearest if empty)
	Resampling     string
	CreationParams map[string]string
}

type CogGenerator interface {
	// Create writes the raster as a Cloud Optimized GeoTIFF in outPath (local file)
	Create(raster *gridio.Raster, opts CogOptions, outPath string) error
	// Validate returns an error if the file is not a valid COG
	Validate(ctx context.Context, path string) error
}

func NewCogGenerator() CogGenerator {
	return &cogGenerator{}
}

type cogGenerator struct{}

func (c *cogGenerator) Create(raster *gridio.Raster, opts CogOptions, outPath string) error {
	if opts.BlockSize == 0 {
		opts.BlockSize = 256
	}
	resampling, err := ResamplingFromString(opts.Resampling)
	if err != nil {
		return err
	}

	memDs, err := toMemDataset(raster)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	defer memDs.Close()

	options := []string{
		"-co", "TILED=YES",
		"-co", fmt.Sprintf("BLOCKXSIZE=%d", opts.BlockSize),
		"-co", fmt.Sprintf("BLOCKYSIZE=%d", opts.BlockSize),
		"-co", "NUM_THREADS=ALL_CPUS",
		"-co", "SPARSE_OK=TRUE",
	}
	if opts.Compression != "" && opts.Compression != CompressionNO {
		options = c.addCompressionOption(raster.DType, opts.Compression, options)
	}
	if raster.Width*raster.Height >= 10000*10000 {
		options = append(options, "-co", "BIGTIFF=YES")
	}
	options = append(options, creationOptions(opts.CreationParams, false)...)

	cogDatasetPath := "/vsimem/cog_without_overviews_" + uuid.New().String() + ".tif"
	cogDataset, err := memDs.Translate(cogDatasetPath, options, ErrLogger)
	if err != nil {
		return fmt.Errorf("failed to translate cog: %w", err)
	}
	ephemeral := EphemeralDataset{cogDataset, cogDatasetPath}
	defer ephemeral.Close()

	if opts.OverviewsMinSize >= 0 {
		if opts.OverviewsMinSize == 0 {
			opts.OverviewsMinSize = 256
		}
		if err := cogDataset.BuildOverviews(godal.Resampling(resampling), godal.MinSize(opts.OverviewsMinSize)); err != nil {
			return fmt.Errorf("failed to build overviews: %w", err)
		}
	}

	err = cogDataset.Close()
	ephemeral.Dataset = nil
	if err != nil {
		return fmt.Errorf("failed to close tiff file: %w", err)
	}

	if err = c.rewriteTiff(cogDatasetPath, outPath); err != nil {
		return fmt.Errorf("failed to rewrite COG file: %w", err)
	}
	return nil
}

// toMemDataset copies the raster in a MEM dataset.
// Rasters whose rows are ordered with increasing y are flipped to be north-up.
func toMemDataset(raster *gridio.Raster) (*godal.Dataset, error) {
	w, h := raster.Width, raster.Height
	ds, err := godal.Create(godal.Memory, "", 1, raster.DType.ToGDAL(), w, h)
	if err != nil {
		return nil, err
	}

	gt := raster.GDALGeoTransform()
	values := raster.Values()
	if gt[5] > 0 {
		flipped := make([]float64, len(values))
		for j := 0; j < h; j++ {
			copy(flipped[(h-1-j)*w:(h-j)*w], values[j*w:(j+1)*w])
		}
		values = flipped
		gt = [6]float64{gt[0] + gt[2]*float64(h), gt[1], -gt[2], gt[3] + gt[5]*float64(h), gt[4], -gt[5]}
	}

	if err := ds.SetGeoTransform(gt); err != nil {
		ds.Close()
		return nil, err
	}
	if raster.Projection != "" {
		if err := ds.SetProjection(raster.Projection); err != nil {
			ds.Close()
			return nil, err
		}
	}
	band := ds.Bands()[0]
	if raster.HasNoData {
		if err := band.SetNoData(raster.NoData); err != nil {
			ds.Close()
			return nil, err
		}
	}
	if err := band.Write(0, 0, values, w, h); err != nil {
		ds.Close()
		return nil, err
	}
	return ds, nil
}

var resamplings = map[string]godal.ResamplingAlg{
	"":            godal.Nearest,
	"near":        godal.Nearest,
	"nearest":     godal.Nearest,
	"bilinear":    godal.Bilinear,
	"cubic":       godal.Cubic,
	"cubicspline": godal.CubicSpline,
	"lanczos":     godal.Lanczos,
	"average":     godal.Average,
	"gauss":       godal.Gauss,
	"mode":        godal.Mode,
	"max":         godal.Max,
	"min":         godal.Min,
	"median":      godal.Median,
}

// ResamplingFromString returns the GDAL resampling algorithm called s
func ResamplingFromString(s string) (godal.ResamplingAlg, error) {
	r, ok := resamplings[strings.ToLower(s)]
	if !ok {
		return godal.Nearest, fmt.Errorf("unknown resampling algorithm: %s", s)
	}
	return r, nil
}

// Validate checks the layout of a local COG file: tiled bands, overviews sorted by decreasing
// size, IFDs before the image data and the smallest overview first in the data section.
func (c *cogGenerator) Validate(ctx context.Context, path string) error {
	ds, err := godal.Open(path, godal.Drivers("GTiff"), ErrLogger)
	if err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	defer ds.Close()

	band := ds.Bands()[0]
	levels := append([]godal.Band{band}, band.Overviews()...)
	var errs error
	var ifds, blocks []int
	for i, b := range levels {
		st := b.Structure()
		if st.SizeX > 512 || st.SizeY > 512 {
			if (st.BlockSizeX == st.SizeX && st.BlockSizeX > 1024) || (st.BlockSizeY == st.SizeY && st.BlockSizeY > 1024) {
				errs = utils.MergeErrors(true, errs, fmt.Errorf("level %d is not tiled", i))
			}
		}
		if i > 0 {
			prev := levels[i-1].Structure()
			if st.SizeX > prev.SizeX || st.SizeY > prev.SizeY {
				errs = utils.MergeErrors(true, errs, fmt.Errorf("level %d is larger than level %d", i, i-1))
			}
		}
		ifd, err := strconv.Atoi(b.Metadata("IFD_OFFSET", godal.Domain("TIFF")))
		if err != nil {
			errs = utils.MergeErrors(true, errs, fmt.Errorf("level %d: IFD_OFFSET: %w", i, err))
		}
		if i > 0 && ifd < ifds[i-1] {
			errs = utils.MergeErrors(true, errs, fmt.Errorf("the IFD of level %d (byte %d) is before the one of level %d (byte %d)", i, ifd, i-1, ifds[i-1]))
		}
		ifds = append(ifds, ifd)
		blocks = append(blocks, firstBlockOffset(b))
	}

	last := len(levels) - 1
	if blocks[last] > 0 && blocks[last] < ifds[last] {
		errs = utils.MergeErrors(true, errs, fmt.Errorf("the data of level %d is before its IFD", last))
	}
	if last > 0 && blocks[0] > 0 && blocks[0] < blocks[1] {
		errs = utils.MergeErrors(true, errs, fmt.Errorf("the data of the full resolution is before the data of the overviews"))
	}
	if errs != nil {
		return fmt.Errorf("%s is not a valid COG: %w", path, errs)
	}
	return nil
}

// firstBlockOffset returns the offset of the first block having data, or -1
func firstBlockOffset(band godal.Band) int {
	st := band.Structure()
	nx, ny := (st.SizeX+st.BlockSizeX-1)/st.BlockSizeX, (st.SizeY+st.BlockSizeY-1)/st.BlockSizeY
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if s := band.Metadata(fmt.Sprintf("BLOCK_OFFSET_%d_%d", x, y), godal.Domain("TIFF")); s != "" {
				if off, err := strconv.Atoi(s); err == nil {
					return off
				}
				return -1
			}
		}
	}
	return -1
}

func (c *cogGenerator) addCompressionOption(dtype gridio.DType, compression Compression, options []string) []string {
	if dtype.IsFloatingPointFormat() {
		switch compression {
		case CompressionLOSSY:
			options = append(options, "-co", "COMPRESS=LERC_ZSTD", "-co", "MAX_Z_ERROR=0.01")
		case CompressionLOSSLESS:
			options = append(options, "-co", "COMPRESS=LERC_ZSTD", "-co", "MAX_Z_ERROR=0")
		}
		return options
	}
	switch compression {
	case CompressionLOSSY:
		options = append(options, "-co", "COMPRESS=LERC", "-co", "MAX_Z_ERROR=0.01")
	case CompressionLOSSLESS:
		options = append(options, "-co", "COMPRESS=ZSTD", "-co", "PREDICTOR=2")
	}
	return options
}

func (c *cogGenerator) rewriteTiff(src, dest string) error {
	file, fdesc, err := c.openDatasetTiffs(src)
	if err != nil {
		return fmt.Errorf("failed to open dataset tiffs: %w", err)
	}
	defer fdesc.Close()

	finalCogFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to rewrite cog: %w", err)
	}

	defer finalCogFile.Close()

	return cogger.Rewrite(finalCogFile, file)
}

func (c *cogGenerator) openDatasetTiffs(datasetFileName string) (tiff.ReadAtReadSeeker, io.Closer, error) {
	fd, err := godal.VSIOpen(datasetFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return tiff.NewReadAtReadSeeker(fd), fd, nil
}
