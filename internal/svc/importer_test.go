package svc_test

import (
	"context"
	"errors"
	"os"

	"github.com/airbusgeo/gridio/interface/storage"
	mocksStorage "github.com/airbusgeo/gridio/interface/storage/mocks"
	"github.com/airbusgeo/gridio/internal/gridio"
	mocksImage "github.com/airbusgeo/gridio/internal/image/mocks"
	"github.com/airbusgeo/gridio/internal/svc"
	mocksSvc "github.com/airbusgeo/gridio/internal/svc/mocks"
	"github.com/airbusgeo/gridio/internal/utils/affine"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

var northUp = affine.NewAffine(500000, 10, 0, 4800000, 0, -10)

// newDataset returns a mock of a dataset of uint8 bands filled with the number of the band
func newDataset(w, h, bands int, gt *affine.Affine, readErrs map[int]error) *mocksImage.Dataset {
	ds := new(mocksImage.Dataset)
	ds.On("Size").Return(w, h)
	ds.On("BandCount").Return(bands)
	ds.On("GeoTransform").Return(gt, nil)
	ds.On("Projection").Return("")
	ds.On("Close").Return(nil)
	for i, err := range readErrs {
		ds.On("ReadBand", mock.Anything, i).Return(nil, err)
	}
	ds.On("ReadBand", mock.Anything, mock.Anything).Return(func(ctx context.Context, i int) *gridio.Raster {
		values := make([]float64, w*h)
		for k := range values {
			values[k] = float64(i + 1)
		}
		r, _ := gridio.NewRasterFromValues(gridio.DTypeUINT8, w, h, values)
		r.Transform = gt.PixelCenter()
		return r
	}, nil)
	return ds
}

var _ = Describe("Importer", func() {
	var (
		ctx        context.Context
		mockOpener *mocksImage.Opener
		mockHost   *mocksSvc.Host
		grids      *gridio.GridList
		opts       []svc.ImporterOption
		paths      []string

		returnedCount int
		returnedError error
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockOpener = new(mocksImage.Opener)
		mockHost = new(mocksSvc.Host)
		mockHost.On("AddGrid", mock.Anything, mock.Anything).Return(nil)
		grids = gridio.NewGridList(true)
		opts = nil
		paths = []string{"a.tif"}
	})

	JustBeforeEach(func() {
		importer, err := svc.NewImporter(mockOpener, append([]svc.ImporterOption{svc.WithHost(mockHost)}, opts...)...)
		Expect(err).NotTo(HaveOccurred())
		returnedCount, returnedError = importer.Import(ctx, paths, grids)
	})

	names := func() []string {
		var res []string
		for _, g := range grids.Items() {
			res = append(res, g.Name)
		}
		return res
	}

	Context("single band north-up file", func() {
		BeforeEach(func() {
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(4, 3, 1, northUp, nil), nil)
		})
		It("should import one grid named after the file", func() {
			Expect(returnedError).NotTo(HaveOccurred())
			Expect(returnedCount).To(Equal(1))
			Expect(names()).To(Equal([]string{"a.tif"}))
		})
		It("should not regrid", func() {
			g := grids.Items()[0]
			Expect(g.Width).To(Equal(4))
			Expect(g.Height).To(Equal(3))
			Expect(*g.Transform).To(Equal(*northUp.PixelCenter()))
		})
		It("should hand the grid to the host", func() {
			mockHost.AssertCalled(GinkgoT(), "AddGrid", mock.Anything, grids.Items()[0])
		})
	})

	Context("caller supplied list", func() {
		BeforeEach(func() {
			grids = gridio.NewGridList(false)
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(4, 3, 1, northUp, nil), nil)
		})
		It("should not call the host", func() {
			Expect(returnedCount).To(Equal(1))
			mockHost.AssertNotCalled(GinkgoT(), "AddGrid", mock.Anything, mock.Anything)
		})
	})

	Context("multi band file", func() {
		BeforeEach(func() {
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 3, northUp, nil), nil)
		})
		It("should number the bands", func() {
			Expect(returnedCount).To(Equal(3))
			Expect(names()).To(Equal([]string{"a.tif [01]", "a.tif [02]", "a.tif [03]"}))
			Expect(grids.Items()[2].At(0, 0)).To(Equal(3.0))
		})
	})

	Context("failing band", func() {
		BeforeEach(func() {
			readErrs := map[int]error{1: gridio.NewReadFailed(errors.New("io"), "band 2")}
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 3, northUp, readErrs), nil)
		})
		It("should skip the band", func() {
			Expect(returnedError).NotTo(HaveOccurred())
			Expect(names()).To(Equal([]string{"a.tif [01]", "a.tif [03]"}))
		})
	})

	Context("rotated file", func() {
		BeforeEach(func() {
			rotated := affine.NewAffine(1000, 8, 6, 2000, -6, 8)
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(5, 5, 1, rotated, nil), nil)
		})
		It("should regrid onto an axis-aligned grid", func() {
			Expect(returnedError).NotTo(HaveOccurred())
			g := grids.Items()[0]
			Expect(g.Name).To(Equal("a.tif"))
			Expect(g.Transform.IsAxisAligned()).To(BeTrue())
			Expect(g.HasNoData).To(BeTrue())
			Expect(g.Width).To(BeNumerically(">", 5))
		})
	})

	Context("regridding progress", func() {
		var calls [][2]int
		var grid string

		BeforeEach(func() {
			calls = nil
			opts = []svc.ImporterOption{svc.WithProgress(func(ctx context.Context, name string, row, rows int) {
				grid = name
				calls = append(calls, [2]int{row, rows})
			})}
			rotated := affine.NewAffine(1000, 8, 6, 2000, -6, 8)
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(5, 5, 1, rotated, nil), nil)
		})
		It("should report every row of the output grid", func() {
			Expect(returnedError).NotTo(HaveOccurred())
			h := grids.Items()[0].Height
			Expect(grid).To(Equal("a.tif"))
			Expect(calls).To(HaveLen(h))
			Expect(calls[h-1]).To(Equal([2]int{h, h}))
		})
	})

	Context("owned list already filled", func() {
		var previous *gridio.Raster

		BeforeEach(func() {
			previous = newGrid("previous")
			grids.Add(previous)
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 1, northUp, nil), nil)
		})
		It("should release the previous grids", func() {
			Expect(names()).To(Equal([]string{"a.tif"}))
			Expect(previous.Released()).To(BeTrue())
		})
	})

	Context("singular transform", func() {
		BeforeEach(func() {
			singular := affine.NewAffine(0, 2, 4, 0, 1, 2)
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 1, singular, nil), nil)
		})
		It("should fail", func() {
			Expect(returnedCount).To(Equal(0))
			Expect(gridio.IsError(returnedError, gridio.SingularTransform)).To(BeTrue())
		})
	})

	Context("unreadable file among others", func() {
		BeforeEach(func() {
			paths = []string{"bad.txt", "a.tif"}
			mockOpener.On("Open", mock.Anything, "bad.txt").Return(nil, gridio.NewNoSuitableDriver(errors.New("not recognized"), "open bad.txt"))
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 1, northUp, nil), nil)
		})
		It("should skip the file and return the error", func() {
			Expect(returnedCount).To(Equal(1))
			Expect(gridio.IsError(returnedError, gridio.NoSuitableDriver)).To(BeTrue())
			Expect(names()).To(Equal([]string{"a.tif"}))
		})
	})

	Context("cancellation", func() {
		BeforeEach(func() {
			paths = []string{"a.tif", "b.tif"}
			readErrs := map[int]error{0: gridio.NewCancelled(context.Canceled, "band 1")}
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 1, northUp, readErrs), nil)
		})
		It("should stop the import", func() {
			Expect(gridio.IsError(returnedError, gridio.Cancelled)).To(BeTrue())
			mockOpener.AssertNotCalled(GinkgoT(), "Open", mock.Anything, "b.tif")
		})
	})

	Context("projection override", func() {
		BeforeEach(func() {
			opts = []svc.ImporterOption{svc.WithProjection("EPSG:4326")}
			mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(2, 2, 1, northUp, nil), nil)
		})
		It("should attach the projection", func() {
			Expect(grids.Items()[0].Projection).To(ContainSubstring("WGS 84"))
		})
	})

	Context("container file", func() {
		var mockSelector *mocksSvc.Selector

		BeforeEach(func() {
			container := new(mocksImage.Dataset)
			container.On("BandCount").Return(0)
			container.On("Close").Return(nil)
			container.On("SubDatasetMetadata").Return([]string{
				"SUBDATASET_1_NAME=NETCDF:\"a.nc\":temp",
				"SUBDATASET_1_DESC=[2x2] temp",
				"SUBDATASET_2_NAME=NETCDF:\"a.nc\":rain",
				"SUBDATASET_3_DESC=orphan",
			})
			paths = []string{"a.nc"}
			mockOpener.On("Open", mock.Anything, "a.nc").Return(container, nil)
			mockOpener.On("Open", mock.Anything, `NETCDF:"a.nc":temp`).Return(newDataset(2, 2, 1, northUp, nil), nil)
			mockOpener.On("Open", mock.Anything, `NETCDF:"a.nc":rain`).Return(newDataset(2, 2, 1, northUp, nil), nil)
			mockSelector = new(mocksSvc.Selector)
			opts = []svc.ImporterOption{svc.WithSelector(mockSelector)}
		})

		Context("all selected", func() {
			BeforeEach(func() {
				mockSelector.On("Select", mock.Anything, "a.nc", mock.Anything).Return(func(ctx context.Context, file string, sds []gridio.SubDataset) []gridio.SubDataset {
					return sds
				}, nil)
			})
			It("should load the sub-datasets under their description", func() {
				Expect(returnedError).NotTo(HaveOccurred())
				Expect(names()).To(Equal([]string{"[2x2] temp", gridio.DefaultSubDatasetDescription}))
			})
			It("should skip the entries without name", func() {
				sds := mockSelector.Calls[0].Arguments.Get(2).([]gridio.SubDataset)
				Expect(sds).To(HaveLen(2))
			})
		})

		Context("none selected", func() {
			BeforeEach(func() {
				mockSelector.On("Select", mock.Anything, "a.nc", mock.Anything).Return(nil, nil)
			})
			It("should return NoDataSelected", func() {
				Expect(returnedCount).To(Equal(0))
				Expect(gridio.IsError(returnedError, gridio.NoDataSelected)).To(BeTrue())
			})
		})
	})
})

var _ = Describe("Importer with a GridWriter", func() {
	It("should keep the grids of the list usable", func() {
		ctx := context.Background()
		mockOpener := new(mocksImage.Opener)
		mockOpener.On("Open", mock.Anything, "a.tif").Return(newDataset(3, 2, 2, northUp, nil), nil)
		mockCog := new(mocksImage.CogGenerator)
		mockCog.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			Expect(os.WriteFile(args.String(2), []byte("cog"), 0644)).To(Succeed())
		}).Return(nil)
		mockCog.On("Validate", mock.Anything, mock.Anything).Return(nil)
		mockStrategy := new(mocksStorage.Strategy)
		mockStrategy.On("Exist", mock.Anything, mock.Anything).Return(false, storage.ErrFileNotFound)
		mockStrategy.On("UploadFile", mock.Anything, mock.Anything).Return(nil)

		writer, err := svc.NewGridWriter(ctx, mockCog, nil, mockStrategy, svc.GridWriterOptions{Output: "gs://bucket/out"})
		Expect(err).NotTo(HaveOccurred())
		importer, err := svc.NewImporter(mockOpener, svc.WithHost(writer))
		Expect(err).NotTo(HaveOccurred())
		grids := gridio.NewGridList(true)
		n, err := importer.Import(ctx, []string{"a.tif"}, grids)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		written, err := writer.Close(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(written).To(ConsistOf("gs://bucket/out/a.tif_01.tif", "gs://bucket/out/a.tif_02.tif"))

		for i, g := range grids.Items() {
			Expect(g.Released()).To(BeFalse())
			Expect(g.Values()).To(Equal([]float64{float64(i + 1), float64(i + 1), float64(i + 1), float64(i + 1), float64(i + 1), float64(i + 1)}))
		}
	})
})
