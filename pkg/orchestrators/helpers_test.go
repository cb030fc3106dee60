package orchestrators

import (
	"context"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/status"
)

type fakeGate struct {
	connected bool
	ready     bool
	address   string
}

func (g *fakeGate) Connected() bool { return g.connected }
func (g *fakeGate) Ready() bool     { return g.ready }
func (g *fakeGate) Address() string { return g.address }

func readyGate() *fakeGate {
	return &fakeGate{connected: true, ready: true, address: "0xowner"}
}

type fakeRefresher struct {
	lock  sync.Mutex
	calls int
	err   error
}

// Refresh fails like a real store when ctx is already done.
func (r *fakeRefresher) Refresh(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.calls++
	return r.err
}

func (r *fakeRefresher) Calls() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.calls
}

type fakeRecorder struct {
	lock    sync.Mutex
	entries []string
}

func (r *fakeRecorder) Append(message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.entries = append(r.entries, message)
}

func (r *fakeRecorder) Entries() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.entries...)
}

// recordingBroadcaster returns a broadcaster and the messages it showed.
func recordingBroadcaster() (*status.Broadcaster, func() []status.TransactionStatus) {
	b := status.NewBroadcaster(status.NewBroadcasterOptions{})
	var lock sync.Mutex
	var seen []status.TransactionStatus
	b.Subscribe(func(s status.TransactionStatus) {
		lock.Lock()
		defer lock.Unlock()
		if s.Visible {
			seen = append(seen, s)
		}
	})
	return b, func() []status.TransactionStatus {
		lock.Lock()
		defer lock.Unlock()
		return append([]status.TransactionStatus(nil), seen...)
	}
}

func messages(statuses []status.TransactionStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.Message)
	}
	return out
}
