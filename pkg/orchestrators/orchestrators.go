// Package orchestrators sequences the multi-step chain operations of a
// session: creating an encrypted event, triggering one and checking that
// the contract is available. Each orchestrator broadcasts its own
// progress and failures and never runs two operations at once.
package orchestrators

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	connectWalletMessage = "Connect wallet first"
	notReadyMessage      = "FHE not initialized"
)

var tracer = otel.Tracer("github.com/cbodonnell/hideseek/pkg/orchestrators")

// Gate is the part of the session gate orchestrators depend on.
type Gate interface {
	Connected() bool
	Ready() bool
	Address() string
}

// Refresher reloads the event store after a confirmed transaction.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier is the status slot orchestrators report to.
type Notifier interface {
	Pending(message string) uint64
	Success(message string) uint64
	Error(message string) uint64
}

// Recorder receives session history entries.
type Recorder interface {
	Append(message string)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// checkSession reports the precondition failure of gate, broadcasting it.
func checkSession(gate Gate, notifier Notifier) error {
	if !gate.Connected() || gate.Address() == "" {
		notifier.Error(connectWalletMessage)
		return &ConnectionRequiredError{}
	}
	if !gate.Ready() {
		notifier.Error(notReadyMessage)
		return &NotReadyError{}
	}
	return nil
}
