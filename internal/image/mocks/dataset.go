package mocks

import (
	"context"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/airbusgeo/gridio/internal/utils/affine"
	"github.com/stretchr/testify/mock"
)

type Opener struct {
	mock.Mock
}

func (_m *Opener) Open(ctx context.Context, name string) (image.Dataset, error) {
	ret := _m.Called(ctx, name)

	var r0 image.Dataset
	if rf, ok := ret.Get(0).(func(context.Context, string) image.Dataset); ok {
		r0 = rf(ctx, name)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(image.Dataset)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, name)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

type Dataset struct {
	mock.Mock
}

func (_m *Dataset) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *Dataset) Size() (int, int) {
	ret := _m.Called()
	return ret.Int(0), ret.Int(1)
}

func (_m *Dataset) BandCount() int {
	ret := _m.Called()
	return ret.Int(0)
}

func (_m *Dataset) GeoTransform() (*affine.Affine, error) {
	ret := _m.Called()

	var r0 *affine.Affine
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*affine.Affine)
	}
	return r0, ret.Error(1)
}

func (_m *Dataset) Projection() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *Dataset) SubDatasetMetadata() []string {
	ret := _m.Called()

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

func (_m *Dataset) ReadBand(ctx context.Context, i int) (*gridio.Raster, error) {
	ret := _m.Called(ctx, i)

	var r0 *gridio.Raster
	if rf, ok := ret.Get(0).(func(context.Context, int) *gridio.Raster); ok {
		r0 = rf(ctx, i)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gridio.Raster)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int) error); ok {
		r1 = rf(ctx, i)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *Dataset) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}
