package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// PendingTx is a mock type for the PendingTx type
type PendingTx struct {
	mock.Mock
}

func (_m *PendingTx) Hash() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *PendingTx) Wait(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// NewPendingTx creates a new instance of PendingTx. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewPendingTx(t interface {
	mock.TestingT
	Cleanup(func())
}) *PendingTx {
	m := &PendingTx{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
