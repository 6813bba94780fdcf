package image_test

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/utils/affine"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("CogGenerator", func() {
	var (
		ctx     = context.Background()
		tmpDir  string
		raster  *gridio.Raster
		cogGen  = image.NewCogGenerator()
		options image.CogOptions
		err     error
	)

	BeforeEach(func() {
		tmpDir, err = os.MkdirTemp("", "gridio-cog")
		Expect(err).NotTo(HaveOccurred())
		values := make([]float64, 600*400)
		for i := range values {
			values[i] = float64(i % 600)
		}
		raster, err = gridio.NewRasterFromValues(gridio.DTypeFLOAT32, 600, 400, values)
		Expect(err).NotTo(HaveOccurred())
		raster.SetNoData(math.NaN())
		options = image.CogOptions{Compression: image.CompressionLOSSLESS}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Context("grid with rows ordered by increasing y", func() {
		BeforeEach(func() {
			raster.Transform = affine.Translation(1000, 2000).Multiply(affine.Scale(2, 2))
			raster.Values()[0] = 42
		})

		It("should write a valid north-up COG", func() {
			out := filepath.Join(tmpDir, "out.tif")
			Expect(cogGen.Create(raster, options, out)).To(Succeed())
			Expect(cogGen.Validate(ctx, out)).To(Succeed())

			ds, err := godal.Open(out)
			Expect(err).NotTo(HaveOccurred())
			defer ds.Close()
			gt, err := ds.GeoTransform()
			Expect(err).NotTo(HaveOccurred())
			Expect(gt).To(Equal([6]float64{999, 2, 0, 2799, 0, -2}))
			Expect(ds.Bands()[0].Overviews()).NotTo(BeEmpty())
			nodata, ok := ds.Bands()[0].NoData()
			Expect(ok).To(BeTrue())
			Expect(math.IsNaN(nodata)).To(BeTrue())

			lastRow := make([]float32, 600)
			Expect(ds.Bands()[0].Read(0, 399, lastRow, 600, 1)).To(Succeed())
			Expect(lastRow[0]).To(Equal(float32(42)))
			Expect(lastRow[1]).To(Equal(float32(1)))
		})
	})

	Context("without overviews", func() {
		BeforeEach(func() {
			options.OverviewsMinSize = -1
		})
		It("should not build overviews", func() {
			out := filepath.Join(tmpDir, "out.tif")
			Expect(cogGen.Create(raster, options, out)).To(Succeed())
			Expect(cogGen.Validate(ctx, out)).To(Succeed())
			ds, err := godal.Open(out)
			Expect(err).NotTo(HaveOccurred())
			defer ds.Close()
			Expect(ds.Bands()[0].Overviews()).To(BeEmpty())
		})
	})

	Context("unknown resampling", func() {
		BeforeEach(func() {
			options.Resampling = "bicubic-ish"
		})
		It("should return an error", func() {
			Expect(cogGen.Create(raster, options, filepath.Join(tmpDir, "out.tif"))).NotTo(Succeed())
		})
	})

	Describe("Validate", func() {
		It("should reject a striped GeoTIFF", func() {
			out := filepath.Join(tmpDir, "striped.tif")
			ds, err := godal.Create(godal.GTiff, out, 1, godal.Byte, 2000, 600)
			Expect(err).NotTo(HaveOccurred())
			Expect(ds.Close()).To(Succeed())
			Expect(cogGen.Validate(ctx, out)).To(MatchError(ContainSubstring("not tiled")))
		})
		It("should reject missing files", func() {
			Expect(cogGen.Validate(ctx, filepath.Join(tmpDir, "missing.tif"))).NotTo(Succeed())
		})
	})

	Describe("MucogGenerator", func() {
		It("should bundle the cogs", func() {
			a, b := filepath.Join(tmpDir, "a.tif"), filepath.Join(tmpDir, "b.tif")
			Expect(cogGen.Create(raster, options, a)).To(Succeed())
			Expect(cogGen.Create(raster, options, b)).To(Succeed())
			out := filepath.Join(tmpDir, "bundle.tif")
			Expect(image.NewMucogGenerator().Create(out, []string{a, b})).To(Succeed())
			st, err := os.Stat(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(BeNumerically(">", 0))
			Expect(image.NewMucogGenerator().Create(out, nil)).NotTo(Succeed())
		})
	})
})
