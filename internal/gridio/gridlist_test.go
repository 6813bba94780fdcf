package gridio_test

import (
	"github.com/airbusgeo/gridio/internal/gridio"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("GridList", func() {
	It("should keep the insertion order", func() {
		l := gridio.NewGridList(true)
		Expect(l.Owned).To(BeTrue())
		a, _ := gridio.NewRaster(gridio.DTypeUINT8, 1, 1)
		b, _ := gridio.NewRaster(gridio.DTypeUINT8, 1, 1)
		a.Name, b.Name = "a", "b"
		l.Add(a)
		l.Add(b)
		Expect(l.Len()).To(Equal(2))
		Expect(l.Items()[0].Name).To(Equal("a"))
		Expect(l.Items()[1].Name).To(Equal("b"))
	})

	It("should release its rasters", func() {
		l := gridio.NewGridList(false)
		a, _ := gridio.NewRaster(gridio.DTypeUINT8, 1, 1)
		l.Add(a)
		l.Release()
		Expect(l.Len()).To(Equal(0))
		Expect(a.Released()).To(BeTrue())
	})
})
