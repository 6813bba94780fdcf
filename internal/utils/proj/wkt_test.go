package proj_test

import (
	"github.com/airbusgeo/gridio/internal/utils/proj"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("PrettyWKT", func() {
	var (
		wkt      string
		returned string
		err      error
	)

	JustBeforeEach(func() {
		returned, err = proj.PrettyWKT(wkt)
	})

	Context("nested nodes", func() {
		BeforeEach(func() {
			wkt = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AXIS["Latitude",NORTH],AUTHORITY["EPSG","4326"]]`
		})
		It("should indent each level", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(returned).To(Equal(`GEOGCS["WGS 84",
	DATUM["WGS_1984",
		SPHEROID["WGS 84",6378137,298.257223563,
			AUTHORITY["EPSG","7030"]],
		AUTHORITY["EPSG","6326"]],
	PRIMEM["Greenwich",0],
	UNIT["degree",0.0174532925199433],
	AXIS["Latitude",NORTH],
	AUTHORITY["EPSG","4326"]]`))
		})
	})

	Context("spaces, parenthesis and escaped quotes", func() {
		BeforeEach(func() {
			wkt = ` LOCAL_CS ( "a ""b"", c" , UNIT ["m", 1] ) `
		})
		It("should normalize the output", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(returned).To(Equal("LOCAL_CS[\"a \"\"b\"\", c\",\n\tUNIT[\"m\",1]]"))
		})
	})

	Context("malformed wkt", func() {
		for _, w := range []string{"", "GEOGCS", `GEOGCS["WGS 84"`, `GEOGCS["WGS 84]`, `GEOGCS["a"]]`, `GEOGCS["a",]`, `GEOGCS["a")`} {
			w := w
			It("should return an error for "+w, func() {
				_, err := proj.PrettyWKT(w)
				Expect(err).To(HaveOccurred())
			})
		}
	})
})
