package mocks

import (
	"context"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/airbusgeo/gridio/internal/image"
	"github.com/stretchr/testify/mock"
)

type CogGenerator struct {
	mock.Mock
}

func (_m *CogGenerator) Create(raster *gridio.Raster, opts image.CogOptions, outPath string) error {
	ret := _m.Called(raster, opts, outPath)

	var r0 error
	if rf, ok := ret.Get(0).(func(*gridio.Raster, image.CogOptions, string) error); ok {
		r0 = rf(raster, opts, outPath)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *CogGenerator) Validate(ctx context.Context, path string) error {
	ret := _m.Called(ctx, path)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, path)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

type MucogGenerator struct {
	mock.Mock
}

func (_m *MucogGenerator) Create(outPath string, cogFiles []string) error {
	ret := _m.Called(outPath, cogFiles)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, []string) error); ok {
		r0 = rf(outPath, cogFiles)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
