package mocks

import (
	"context"

	chain "github.com/cbodonnell/hideseek/pkg/chain"
	mock "github.com/stretchr/testify/mock"
)

// FHEService is a mock type for the FHEService type
type FHEService struct {
	mock.Mock
}

func (_m *FHEService) Initialize(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

func (_m *FHEService) Encrypt(ctx context.Context, contractAddress string, ownerAddress string, value int64) (*chain.EncryptedInput, error) {
	ret := _m.Called(ctx, contractAddress, ownerAddress, value)
	var r0 *chain.EncryptedInput
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*chain.EncryptedInput)
	}
	return r0, ret.Error(1)
}

// DecryptWithProof returns the configured error. When the return value is
// a func(chain.SubmitFunc) error it is called with submit instead, which
// lets tests drive the callback.
func (_m *FHEService) DecryptWithProof(ctx context.Context, handles []string, contractAddress string, submit chain.SubmitFunc) error {
	ret := _m.Called(ctx, handles, contractAddress, submit)
	if rf, ok := ret.Get(0).(func(chain.SubmitFunc) error); ok {
		return rf(submit)
	}
	return ret.Error(0)
}

// NewFHEService creates a new instance of FHEService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewFHEService(t interface {
	mock.TestingT
	Cleanup(func())
}) *FHEService {
	m := &FHEService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
