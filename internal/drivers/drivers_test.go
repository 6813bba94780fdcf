package drivers_test

import (
	"github.com/airbusgeo/gridio/internal/drivers"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table", func() {
	var table *drivers.Table

	BeforeEach(func() {
		table = drivers.NewTable(
			drivers.Driver{Name: "GTiff", Raster: true, Create: true, Extensions: []string{"tif", "tiff"}},
			drivers.Driver{Name: "GeoJSON", Vector: true, Create: true, Extensions: []string{"json", "geojson"}},
			drivers.Driver{Name: "GPKG", Raster: true, Vector: true, Create: true, Extensions: []string{"gpkg"}},
			drivers.Driver{Name: "GML", Vector: true, Extensions: []string{"gml"}},
			drivers.Driver{Name: "gtiff", LongName: "duplicate"},
		)
	})

	It("should ignore duplicates", func() {
		Expect(table.Len()).To(Equal(4))
		d, ok := table.Lookup("GTIFF")
		Expect(ok).To(BeTrue())
		Expect(d.LongName).To(BeEmpty())
	})

	It("should list drivers by capability", func() {
		names := func(ds []drivers.Driver) []string {
			var res []string
			for _, d := range ds {
				res = append(res, d.Name)
			}
			return res
		}
		Expect(names(table.Raster())).To(Equal([]string{"GPKG", "GTiff"}))
		Expect(names(table.Vector())).To(Equal([]string{"GML", "GPKG", "GeoJSON"}))
		Expect(names(table.WritableVector())).To(Equal([]string{"GPKG", "GeoJSON"}))
	})

	It("should only resolve its own drivers", func() {
		_, ok := table.Resolve("gml")
		Expect(ok).To(BeTrue())
		_, ok = table.Resolve("PGDUMP")
		Expect(ok).To(BeFalse())
		Expect(table.RasterNames()).To(Equal([]string{"GTiff", "GPKG"}))
	})

	It("should find vector drivers by extension", func() {
		d, ok := table.ByExtension(".GeoJSON")
		Expect(ok).To(BeTrue())
		Expect(d.Name).To(Equal("GeoJSON"))
		_, ok = table.ByExtension("tif")
		Expect(ok).To(BeFalse())
	})

	Describe("Probe", func() {
		It("should query GDAL", func() {
			t := drivers.Probe("GTiff", "GeoJSON", "NotADriver")
			Expect(t.Len()).To(Equal(2))
			gtiff, ok := t.Lookup("GTiff")
			Expect(ok).To(BeTrue())
			Expect(gtiff.LongName).To(Equal("GeoTIFF"))
			Expect(gtiff.Raster).To(BeTrue())
			Expect(gtiff.Writable()).To(BeTrue())
			geojson, _ := t.Lookup("GeoJSON")
			Expect(geojson.Vector).To(BeTrue())
			Expect(t.WritableVector()).To(HaveLen(1))
			Expect(t.RasterNames()).To(Equal([]string{"GTiff"}))
			_, ok = t.Resolve("PGDUMP")
			Expect(ok).To(BeFalse())
		})
		It("should resolve any registered driver without names", func() {
			t := drivers.Probe()
			Expect(t.RasterNames()).To(BeNil())
			_, ok := t.Lookup("PGDUMP")
			Expect(ok).To(BeFalse())
			pgdump, ok := t.Resolve("PGDUMP")
			Expect(ok).To(BeTrue())
			Expect(pgdump.Vector).To(BeTrue())
			Expect(pgdump.Writable()).To(BeTrue())
			_, ok = t.Resolve("NotADriver")
			Expect(ok).To(BeFalse())
		})
	})
})
