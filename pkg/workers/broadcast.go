package workers

import (
	"context"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/messages"
)

// Sink is one stream subscriber, e.g. a websocket connection.
type Sink interface {
	Send(msg *messages.Message) error
}

type BroadcastMessage struct {
	Type    string
	Message interface{}
}

// BroadcastMessageWorker fans messages out to every registered sink. A
// sink that fails to receive is dropped.
type BroadcastMessageWorker struct {
	broadcastMessageChan <-chan BroadcastMessage

	lock       sync.Mutex
	sinks      map[int]Sink
	nextSinkID int
}

type NewBroadcastMessageWorkerOptions struct {
	BroadcastMessageChan <-chan BroadcastMessage
}

func NewBroadcastMessageWorker(opts NewBroadcastMessageWorkerOptions) *BroadcastMessageWorker {
	return &BroadcastMessageWorker{
		broadcastMessageChan: opts.BroadcastMessageChan,
		sinks:                make(map[int]Sink),
	}
}

// Register adds sink and returns a function removing it.
func (w *BroadcastMessageWorker) Register(sink Sink) (unregister func()) {
	w.lock.Lock()
	defer w.lock.Unlock()
	id := w.nextSinkID
	w.nextSinkID++
	w.sinks[id] = sink
	log.Debug("Registered stream sink %d", id)

	return func() {
		w.lock.Lock()
		defer w.lock.Unlock()
		delete(w.sinks, id)
	}
}

// Count returns the number of registered sinks.
func (w *BroadcastMessageWorker) Count() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return len(w.sinks)
}

func (w *BroadcastMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.broadcastMessageChan:
			if err := w.sendToAll(msg); err != nil {
				log.Error("Failed to broadcast %s message: %v", msg.Type, err)
			}
		}
	}
}

func (w *BroadcastMessageWorker) sendToAll(b BroadcastMessage) error {
	msg, err := messages.New(b.Type, b.Message)
	if err != nil {
		return err
	}

	// Sends run outside the lock, one goroutine per sink.
	w.lock.Lock()
	sinks := make(map[int]Sink, len(w.sinks))
	for id, sink := range w.sinks {
		sinks[id] = sink
	}
	w.lock.Unlock()

	var wg sync.WaitGroup
	var failedLock sync.Mutex
	failed := []int{}
	for id, sink := range sinks {
		wg.Add(1)
		go func(id int, sink Sink) {
			defer wg.Done()
			if err := sink.Send(msg); err != nil {
				log.Warn("Dropping stream sink %d: %v", id, err)
				failedLock.Lock()
				failed = append(failed, id)
				failedLock.Unlock()
			}
		}(id, sink)
	}
	wg.Wait()

	if len(failed) > 0 {
		w.lock.Lock()
		for _, id := range failed {
			delete(w.sinks, id)
		}
		w.lock.Unlock()
	}
	return nil
}
