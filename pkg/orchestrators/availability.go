package orchestrators

import (
	"context"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/log"
)

const (
	availableMessage         = "System available!"
	availabilityCheckMessage = "Availability check failed"
)

// AvailabilityChecker asks the contract whether it accepts new activity.
type AvailabilityChecker struct {
	reader   chain.ReadOnlyContract
	notifier Notifier
	logger   *log.Logger
}

func NewAvailabilityChecker(reader chain.ReadOnlyContract, notifier Notifier) *AvailabilityChecker {
	return &AvailabilityChecker{
		reader:   reader,
		notifier: notifier,
		logger:   log.With("component", "availability"),
	}
}

// Check broadcasts success only when the contract reports itself
// available; an unavailable contract produces no status.
func (a *AvailabilityChecker) Check(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityChecker.Check")
	available, err := a.reader.CheckAvailability(ctx)
	endSpan(span, err)
	if err != nil {
		a.logger.Error("Availability check failed: %v", err)
		a.notifier.Error(availabilityCheckMessage)
		return false, err
	}
	if available {
		a.notifier.Success(availableMessage)
	}
	return available, nil
}
