package mocks

import (
	"context"
	"io"

	"github.com/airbusgeo/gridio/interface/storage"
	"github.com/stretchr/testify/mock"
)

type Strategy struct {
	mock.Mock
}

func (_m *Strategy) Download(ctx context.Context, uri string, options ...storage.Option) ([]byte, error) {
	ret := _m.Called(ctx, uri)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, uri)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// UploadFile reads and closes data, so that the caller can remove the file
func (_m *Strategy) UploadFile(ctx context.Context, uri string, data io.ReadCloser, options ...storage.Option) error {
	defer data.Close()
	_, _ = io.Copy(io.Discard, data)
	ret := _m.Called(ctx, uri)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, uri)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *Strategy) Delete(ctx context.Context, uri string, options ...storage.Option) error {
	ret := _m.Called(ctx, uri)
	return ret.Error(0)
}

func (_m *Strategy) Exist(ctx context.Context, uri string) (bool, error) {
	ret := _m.Called(ctx, uri)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, string) bool); ok {
		r0 = rf(ctx, uri)
	} else {
		r0 = ret.Bool(0)
	}

	return r0, ret.Error(1)
}
