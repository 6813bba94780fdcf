package mocks

import (
	"context"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/stretchr/testify/mock"
)

type Host struct {
	mock.Mock
}

func (_m *Host) AddGrid(ctx context.Context, grid *gridio.Raster) error {
	ret := _m.Called(ctx, grid)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *gridio.Raster) error); ok {
		r0 = rf(ctx, grid)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

type Selector struct {
	mock.Mock
}

func (_m *Selector) Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	ret := _m.Called(ctx, file, subDatasets)

	var r0 []gridio.SubDataset
	if rf, ok := ret.Get(0).(func(context.Context, string, []gridio.SubDataset) []gridio.SubDataset); ok {
		r0 = rf(ctx, file, subDatasets)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]gridio.SubDataset)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, []gridio.SubDataset) error); ok {
		r1 = rf(ctx, file, subDatasets)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
