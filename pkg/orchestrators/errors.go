package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/cbodonnell/hideseek/pkg/chain"
)

// ErrInFlight is returned when an operation of the same kind is already
// running. Nothing is submitted and nothing is queued.
var ErrInFlight = errors.New("operation already in flight")

// ConnectionRequiredError is returned when no wallet is connected.
type ConnectionRequiredError struct{}

func (e *ConnectionRequiredError) Error() string {
	return "wallet connection required"
}

func IsConnectionRequired(err error) bool {
	var target *ConnectionRequiredError
	return errors.As(err, &target)
}

// NotReadyError is returned when the wallet is connected but the FHE
// service is not initialized.
type NotReadyError struct{}

func (e *NotReadyError) Error() string {
	return "fhe service not ready"
}

func IsNotReady(err error) bool {
	var target *NotReadyError
	return errors.As(err, &target)
}

// CreationFailedError distinguishes a declined signature from every other
// creation failure.
type CreationFailedError struct {
	UserRejected bool
	Err          error
}

func (e *CreationFailedError) Error() string {
	if e.UserRejected {
		return fmt.Sprintf("event creation rejected by user: %v", e.Err)
	}
	return fmt.Sprintf("event creation failed: %v", e.Err)
}

func (e *CreationFailedError) Unwrap() error {
	return e.Err
}

func IsCreationFailed(err error) bool {
	var target *CreationFailedError
	return errors.As(err, &target)
}

type TriggerCause string

const (
	TriggerCauseRejected      TriggerCause = "rejected"
	TriggerCauseProofRejected TriggerCause = "proof_rejected"
	TriggerCauseNetwork       TriggerCause = "network"
	TriggerCauseUnknown       TriggerCause = "unknown"
)

// TriggerFailedError is surfaced to players as one generic message; Cause
// keeps the underlying reason for logs and callers that need it.
type TriggerFailedError struct {
	Cause TriggerCause
	Err   error
}

func (e *TriggerFailedError) Error() string {
	return fmt.Sprintf("trigger failed (%s): %v", e.Cause, e.Err)
}

func (e *TriggerFailedError) Unwrap() error {
	return e.Err
}

func IsTriggerFailed(err error) bool {
	var target *TriggerFailedError
	return errors.As(err, &target)
}

func classifyTriggerCause(err error) TriggerCause {
	var netErr net.Error
	switch {
	case chain.IsUserRejected(err):
		return TriggerCauseRejected
	case errors.Is(err, chain.ErrProofRejected):
		return TriggerCauseProofRejected
	case errors.Is(err, chain.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return TriggerCauseNetwork
	default:
		return TriggerCauseUnknown
	}
}
