package mocks

import (
	"context"

	types "github.com/cbodonnell/hideseek/pkg/game/types"
	mock "github.com/stretchr/testify/mock"
)

// MapSink is a mock type for the MapSink type
type MapSink struct {
	mock.Mock
}

func (_m *MapSink) PlaceMarker(ctx context.Context, position types.Position) error {
	ret := _m.Called(ctx, position)
	return ret.Error(0)
}

// NewMapSink creates a new instance of MapSink. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMapSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *MapSink {
	m := &MapSink{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
