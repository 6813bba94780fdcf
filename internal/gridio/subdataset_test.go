package gridio_test

import (
	"github.com/airbusgeo/gridio/internal/gridio"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseSubDatasets", func() {
	var (
		lines    []string
		returned []gridio.SubDataset
	)

	JustBeforeEach(func() {
		returned = gridio.ParseSubDatasets(lines)
	})

	Context("name followed by its description", func() {
		BeforeEach(func() {
			lines = []string{"SUBDATASET_1_NAME=foo", "SUBDATASET_1_DESC=bar", "SUBDATASET_2_NAME=baz"}
		})
		It("should return two sub-datasets", func() {
			Expect(returned).To(Equal([]gridio.SubDataset{
				{Index: 1, Name: "foo", Description: "bar"},
				{Index: 2, Name: "baz", Description: gridio.DefaultSubDatasetDescription},
			}))
		})
	})

	Context("description before its name", func() {
		BeforeEach(func() {
			lines = []string{"SUBDATASET_2_DESC=second", "SUBDATASET_1_NAME=first", "SUBDATASET_2_NAME=NETCDF:\"f.nc\":tas"}
		})
		It("should pair entries by index", func() {
			Expect(returned).To(Equal([]gridio.SubDataset{
				{Index: 2, Name: "NETCDF:\"f.nc\":tas", Description: "second"},
				{Index: 1, Name: "first", Description: gridio.DefaultSubDatasetDescription},
			}))
		})
	})

	Context("entries without name", func() {
		BeforeEach(func() {
			lines = []string{"SUBDATASET_1_DESC=orphan", "SUBDATASET_2_NAME=", "SUBDATASET_3_NAME=kept"}
		})
		It("should skip them", func() {
			Expect(returned).To(HaveLen(1))
			Expect(returned[0].Name).To(Equal("kept"))
		})
	})

	Context("unrelated lines", func() {
		BeforeEach(func() {
			lines = []string{"AREA_OR_POINT=Area", "SUBDATASET_X_NAME=foo", "subdataset_1_name=foo", ""}
		})
		It("should be ignored", func() {
			Expect(returned).To(BeEmpty())
		})
	})

	Context("values containing '='", func() {
		BeforeEach(func() {
			lines = []string{"SUBDATASET_1_NAME=HDF5:\"a=b.h5\"://x", "SUBDATASET_1_DESC=[1x2] x=y (float32)"}
		})
		It("should keep the whole value", func() {
			Expect(returned).To(Equal([]gridio.SubDataset{{Index: 1, Name: "HDF5:\"a=b.h5\"://x", Description: "[1x2] x=y (float32)"}}))
		})
	})
})
