package mocks

import (
	"context"

	chain "github.com/cbodonnell/hideseek/pkg/chain"
	mock "github.com/stretchr/testify/mock"
)

// SignerContract is a mock type for the SignerContract type
type SignerContract struct {
	mock.Mock
}

func (_m *SignerContract) CreateEvent(ctx context.Context, params chain.CreateEventParams) (chain.PendingTx, error) {
	ret := _m.Called(ctx, params)
	var r0 chain.PendingTx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(chain.PendingTx)
	}
	return r0, ret.Error(1)
}

func (_m *SignerContract) SubmitVerification(ctx context.Context, id string, clearValues []byte, proof []byte) (chain.PendingTx, error) {
	ret := _m.Called(ctx, id, clearValues, proof)
	var r0 chain.PendingTx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(chain.PendingTx)
	}
	return r0, ret.Error(1)
}

// NewSignerContract creates a new instance of SignerContract. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewSignerContract(t interface {
	mock.TestingT
	Cleanup(func())
}) *SignerContract {
	m := &SignerContract{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
