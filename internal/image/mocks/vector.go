package mocks

import (
	"context"

	"github.com/airbusgeo/gridio/internal/image"
	"github.com/stretchr/testify/mock"
)

type VectorTranslator struct {
	mock.Mock
}

func (_m *VectorTranslator) Translate(ctx context.Context, req image.VectorTranslateRequest) (int, error) {
	ret := _m.Called(ctx, req)

	var r0 int
	if rf, ok := ret.Get(0).(func(context.Context, image.VectorTranslateRequest) int); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Int(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, image.VectorTranslateRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
