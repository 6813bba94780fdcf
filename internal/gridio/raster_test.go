package gridio_test

import (
	"math"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/utils/affine"
	"github.com/twpayne/go-geom"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Raster", func() {
	var r *gridio.Raster

	BeforeEach(func() {
		var err error
		r, err = gridio.NewRasterFromValues(gridio.DTypeUINT8, 3, 2, []float64{1, 2, 3, 4, 300, -5})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject empty sizes", func() {
		_, err := gridio.NewRaster(gridio.DTypeUINT8, 0, 2)
		Expect(err).To(HaveOccurred())
		_, err = gridio.NewRasterFromValues(gridio.DTypeUINT8, 2, 2, []float64{1})
		Expect(err).To(HaveOccurred())
	})

	It("should reject sizes that overflow", func() {
		_, err := gridio.NewRaster(gridio.DTypeFLOAT64, math.MaxInt, 2)
		Expect(err).To(HaveOccurred())
		_, err = gridio.NewRaster(gridio.DTypeFLOAT64, 100000, 100000)
		Expect(err).To(HaveOccurred())
	})

	It("should cast values to the cell type", func() {
		Expect(r.At(1, 1)).To(Equal(255.0))
		Expect(r.At(2, 1)).To(Equal(0.0))
		r.Set(0, 0, 12.6)
		Expect(r.At(0, 0)).To(Equal(13.0))
	})

	Context("nearest neighbour sampling", func() {
		It("should round to the nearest cell", func() {
			v, ok := r.NearestValue(0.49, 0.51)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(4.0))
			v, ok = r.NearestValue(-0.5, 0)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1.0))
		})
		It("should not wrap around", func() {
			_, ok := r.NearestValue(2.5, 0)
			Expect(ok).To(BeFalse())
			_, ok = r.NearestValue(-0.51, 0)
			Expect(ok).To(BeFalse())
			_, ok = r.NearestValue(math.NaN(), 0)
			Expect(ok).To(BeFalse())
		})
		It("should skip nodata", func() {
			r.SetNoData(2)
			_, ok := r.NearestValue(1, 0)
			Expect(ok).To(BeFalse())
		})
	})

	It("should compare NaN nodata", func() {
		f, _ := gridio.NewRaster(gridio.DTypeFLOAT32, 1, 1)
		f.SetNoData(math.NaN())
		f.Set(0, 0, math.NaN())
		Expect(f.IsNoData(f.At(0, 0))).To(BeTrue())
		Expect(f.IsNoData(0)).To(BeFalse())
	})

	Context("georeferencing", func() {
		BeforeEach(func() {
			r.Transform = affine.NewAffine(100, 2, 0, 500, 0, -2).PixelCenter()
		})
		It("should return the GDAL geotransform", func() {
			Expect(r.GDALGeoTransform()).To(Equal([6]float64{100, 2, 0, 500, 0, -2}))
		})
		It("should compute the bounds of the cell centers", func() {
			Expect(r.Bounds()).To(Equal([4]float64{101, 497, 105, 499}))
		})
		It("should compute the footprint", func() {
			fp := r.Footprint()
			Expect(math.Abs(fp.Area())).To(BeNumerically("~", 24, 1e-9))
			Expect(fp.Bounds().Min(0)).To(Equal(100.0))
			Expect(fp.Bounds().Max(1)).To(Equal(500.0))
			Expect(fp.Layout()).To(Equal(geom.XY))
		})
	})

	It("should be unusable once released", func() {
		r.Release()
		Expect(r.Released()).To(BeTrue())
		Expect(func() { r.At(0, 0) }).To(PanicWith(gridio.ErrReleased))
	})
})
