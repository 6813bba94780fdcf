package proj_test

import (
	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/utils/proj"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-geom"
)

var _ = Describe("CRSFromUserInput", func() {
	var (
		input string
		crs   *godal.SpatialRef
		srid  int
		err   error
	)

	JustBeforeEach(func() {
		crs, srid, err = proj.CRSFromUserInput(input)
	})

	AfterEach(func() {
		if crs != nil {
			crs.Close()
		}
	})

	Context("epsg code", func() {
		BeforeEach(func() {
			input = "32630"
		})
		It("should return the srid", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(srid).To(Equal(32630))
			Expect(crs.AuthorityCode("PROJCS")).To(Equal("32630"))
		})
	})

	Context("epsg prefix", func() {
		BeforeEach(func() {
			input = "EPSG:4326"
		})
		It("should return the srid", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(srid).To(Equal(4326))
		})
	})

	Context("bad epsg prefix", func() {
		BeforeEach(func() {
			input = "epsg:abc"
		})
		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	Context("wkt", func() {
		BeforeEach(func() {
			input = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`
		})
		It("should identify the srid", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(srid).To(Equal(4326))
		})
	})
})

var _ = Describe("LonLatFootprint", func() {
	It("should project the footprint in lon/lat", func() {
		crs, err := proj.CRSFromEPSG(32630)
		Expect(err).NotTo(HaveOccurred())
		p := geom.NewPolygonFlat(geom.XY, []float64{852835, 4842077, 863531, 4840218, 860880, 4833605, 852499, 4833757, 852835, 4842077}, []int{10})

		ll, err := proj.LonLatFootprint(p, crs)
		Expect(err).NotTo(HaveOccurred())
		Expect(ll.SRID()).To(Equal(4326))
		Expect(ll.NumLinearRings()).To(Equal(1))
		coords := ll.FlatCoords()
		Expect(coords[0]).To(BeNumerically("~", 1.3748665564675484, 1e-8))
		Expect(coords[1]).To(BeNumerically("~", 43.64792634710127, 1e-8))
		Expect(coords[len(coords)-2:]).To(Equal(coords[:2]))
	})
})
