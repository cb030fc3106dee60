package orchestrators

import (
	"fmt"
	"sync"
)

// Phase is the lifecycle of one orchestrator. Only one operation per
// orchestrator can be Pending at a time.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

var allowedTransitions = map[Phase]map[Phase]struct{}{
	PhaseIdle: {
		PhasePending: {},
	},
	PhasePending: {
		PhaseSucceeded: {},
		PhaseFailed:    {},
	},
	PhaseSucceeded: {
		PhasePending: {},
	},
	PhaseFailed: {
		PhasePending: {},
	},
}

func ValidateTransition(from, to Phase) error {
	next, ok := allowedTransitions[from]
	if !ok {
		return fmt.Errorf("invalid phase: %q", from)
	}
	if _, ok := allowedTransitions[to]; !ok {
		return fmt.Errorf("invalid phase: %q", to)
	}
	if _, ok := next[to]; !ok {
		return fmt.Errorf("invalid phase transition: %s -> %s", from, to)
	}
	return nil
}

// guard serializes an orchestrator. begin refuses instead of waiting.
type guard struct {
	lock  sync.Mutex
	phase Phase
}

func newGuard() *guard {
	return &guard{phase: PhaseIdle}
}

func (g *guard) begin() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if ValidateTransition(g.phase, PhasePending) != nil {
		return false
	}
	g.phase = PhasePending
	return true
}

func (g *guard) finish(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	to := PhaseSucceeded
	if err != nil {
		to = PhaseFailed
	}
	if ValidateTransition(g.phase, to) != nil {
		return
	}
	g.phase = to
}

func (g *guard) current() Phase {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.phase
}
