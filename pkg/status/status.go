package status

import (
	"sync"
	"time"
)

type Phase string

const (
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// TransactionStatus is the one notification shown to the player.
type TransactionStatus struct {
	Visible bool   `json:"visible"`
	Phase   Phase  `json:"status"`
	Message string `json:"message"`
	// ExpiresAt is when the status auto-dismisses. Zero when hidden.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Delays are the auto-dismiss delays per phase.
type Delays struct {
	Pending time.Duration
	Success time.Duration
	Error   time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Pending: 3 * time.Second,
		Success: 2 * time.Second,
		Error:   3 * time.Second,
	}
}

func (d Delays) For(phase Phase) time.Duration {
	switch phase {
	case PhaseSuccess:
		return d.Success
	case PhaseError:
		return d.Error
	default:
		return d.Pending
	}
}

// Handler is called with the new status on every change.
type Handler func(status TransactionStatus)

type timer interface {
	Stop() bool
}

// Broadcaster holds a single status slot. A Set overwrites whatever is
// visible and owns the dismissal; timers of superseded statuses are inert.
type Broadcaster struct {
	lock    sync.Mutex
	current TransactionStatus
	// token identifies the status currently in the slot
	token     uint64
	timer     timer
	delays    Delays
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) timer

	handlers      map[int]Handler
	nextHandlerID int
}

type NewBroadcasterOptions struct {
	Delays Delays
}

func NewBroadcaster(opts NewBroadcasterOptions) *Broadcaster {
	delays := opts.Delays
	defaults := DefaultDelays()
	if delays.Pending <= 0 {
		delays.Pending = defaults.Pending
	}
	if delays.Success <= 0 {
		delays.Success = defaults.Success
	}
	if delays.Error <= 0 {
		delays.Error = defaults.Error
	}
	return &Broadcaster{
		current: hidden(),
		delays:  delays,
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		handlers: make(map[int]Handler),
	}
}

func hidden() TransactionStatus {
	return TransactionStatus{Phase: PhasePending}
}

// Set replaces the current status and schedules its dismissal.
// It returns the token of the new status.
func (b *Broadcaster) Set(phase Phase, message string) uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.token++
	token := b.token
	if b.timer != nil {
		b.timer.Stop()
	}

	delay := b.delays.For(phase)
	b.current = TransactionStatus{
		Visible:   true,
		Phase:     phase,
		Message:   message,
		ExpiresAt: b.now().Add(delay),
	}
	b.timer = b.afterFunc(delay, func() {
		b.expire(token)
	})
	b.notify()
	return token
}

func (b *Broadcaster) Pending(message string) uint64 {
	return b.Set(PhasePending, message)
}

func (b *Broadcaster) Success(message string) uint64 {
	return b.Set(PhaseSuccess, message)
}

func (b *Broadcaster) Error(message string) uint64 {
	return b.Set(PhaseError, message)
}

// expire hides the status identified by token if it is still current.
func (b *Broadcaster) expire(token uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if token != b.token {
		return
	}
	b.current = hidden()
	b.timer = nil
	b.notify()
}

// Current returns a copy of the status in the slot.
func (b *Broadcaster) Current() TransactionStatus {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.current
}

// Subscribe registers a handler and returns a function removing it.
// Handlers run synchronously while the broadcaster is locked, so every
// handler sees changes in order. They must not call back into the
// broadcaster and should not block.
func (b *Broadcaster) Subscribe(handler Handler) (unsubscribe func()) {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := b.nextHandlerID
	b.nextHandlerID++
	b.handlers[id] = handler

	return func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		delete(b.handlers, id)
	}
}

// notify must be called with b.lock held.
func (b *Broadcaster) notify() {
	for _, handler := range b.handlers {
		handler(b.current)
	}
}
