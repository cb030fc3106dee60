package mocks

import (
	"context"

	types "github.com/cbodonnell/hideseek/pkg/game/types"
	mock "github.com/stretchr/testify/mock"
)

// ReadOnlyContract is a mock type for the ReadOnlyContract type
type ReadOnlyContract struct {
	mock.Mock
}

func (_m *ReadOnlyContract) Address(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (_m *ReadOnlyContract) ListEventIDs(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)
	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

func (_m *ReadOnlyContract) GetEventRecord(ctx context.Context, id string) (*types.EventRecord, error) {
	ret := _m.Called(ctx, id)
	var r0 *types.EventRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.EventRecord)
	}
	return r0, ret.Error(1)
}

func (_m *ReadOnlyContract) GetEncryptedHandle(ctx context.Context, id string) (string, error) {
	ret := _m.Called(ctx, id)
	return ret.String(0), ret.Error(1)
}

func (_m *ReadOnlyContract) CheckAvailability(ctx context.Context) (bool, error) {
	ret := _m.Called(ctx)
	return ret.Bool(0), ret.Error(1)
}

// NewReadOnlyContract creates a new instance of ReadOnlyContract. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewReadOnlyContract(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReadOnlyContract {
	m := &ReadOnlyContract{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
