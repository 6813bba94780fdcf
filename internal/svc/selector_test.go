package svc_test

import (
	"context"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/svc"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Selectors", func() {
	ctx := context.Background()
	subDatasets := []gridio.SubDataset{
		{Index: 1, Name: `NETCDF:"a.nc":temp`, Description: "[2x2] temperature (32-bit floating-point)"},
		{Index: 2, Name: `NETCDF:"a.nc":rain`, Description: "[2x2] precipitation (32-bit floating-point)"},
		{Index: 4, Name: `NETCDF:"a.nc":wind`, Description: gridio.DefaultSubDatasetDescription},
	}
	indices := func(sds []gridio.SubDataset) []int {
		var res []int
		for _, sd := range sds {
			res = append(res, sd.Index)
		}
		return res
	}

	It("should select all", func() {
		selected, err := svc.SelectAll.Select(ctx, "a.nc", subDatasets)
		Expect(err).NotTo(HaveOccurred())
		Expect(selected).To(Equal(subDatasets))
	})

	It("should select by regexp on name or description", func() {
		s, err := svc.NewRegexpSelector("rain|wind")
		Expect(err).NotTo(HaveOccurred())
		selected, _ := s.Select(ctx, "a.nc", subDatasets)
		Expect(indices(selected)).To(Equal([]int{2, 4}))

		s, _ = svc.NewRegexpSelector("^\\[2x2\\] temp")
		selected, _ = s.Select(ctx, "a.nc", subDatasets)
		Expect(indices(selected)).To(Equal([]int{1}))
	})

	It("should reject invalid regexps", func() {
		_, err := svc.NewRegexpSelector("(")
		Expect(err).To(HaveOccurred())
	})

	It("should select by index", func() {
		s, err := svc.ParseIndexSelector("1, 3-4")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(svc.IndexSelector{{First: 1, Last: 1}, {First: 3, Last: 4}}))
		selected, _ := s.Select(ctx, "a.nc", subDatasets)
		Expect(indices(selected)).To(Equal([]int{1, 4}))

		selected, _ = svc.IndexSelector{{First: 3, Last: 3}}.Select(ctx, "a.nc", subDatasets)
		Expect(selected).To(BeEmpty())
	})

	It("should keep large ranges compact", func() {
		s, err := svc.ParseIndexSelector("1-2000000000")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(HaveLen(1))
		Expect(s.Contains(2000000000)).To(BeTrue())
		Expect(s.Contains(2000000001)).To(BeFalse())
		selected, _ := s.Select(ctx, "a.nc", subDatasets)
		Expect(indices(selected)).To(Equal(indices(subDatasets)))
	})

	It("should reject invalid index lists", func() {
		for _, s := range []string{"a", "1-", "4-2", "1,b-3"} {
			_, err := svc.ParseIndexSelector(s)
			Expect(err).To(HaveOccurred(), s)
		}
	})
})
