package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/status"
)

const initFailedMessage = "FHEVM initialization failed"

type Phase string

const (
	PhaseDisconnected           Phase = "disconnected"
	PhaseConnectedUninitialized Phase = "connected_uninitialized"
	PhaseInitializing           Phase = "initializing"
	PhaseReady                  Phase = "ready"
)

// State is a snapshot of the gate.
type State struct {
	Connected    bool   `json:"connected"`
	FHEReady     bool   `json:"fheReady"`
	Initializing bool   `json:"initializing"`
	Address      string `json:"address,omitempty"`
}

func (s State) Phase() Phase {
	switch {
	case !s.Connected:
		return PhaseDisconnected
	case s.Initializing:
		return PhaseInitializing
	case s.FHEReady:
		return PhaseReady
	default:
		return PhaseConnectedUninitialized
	}
}

// InitializationFailedError is returned when the FHE service could not start.
type InitializationFailedError struct {
	Err error
}

func (e *InitializationFailedError) Error() string {
	return fmt.Sprintf("fhe initialization failed: %v", e.Err)
}

func (e *InitializationFailedError) Unwrap() error {
	return e.Err
}

func IsInitializationFailed(err error) bool {
	_, ok := err.(*InitializationFailedError)
	return ok
}

// Gate tracks wallet connection and FHE readiness. The FHE service is
// initialized at most once per connection; a failure leaves the gate
// connected but uninitialized until the wallet reconnects.
type Gate struct {
	lock         sync.Mutex
	fhe          chain.Initializer
	broadcaster  *status.Broadcaster
	logger       *log.Logger
	address      string
	connected    bool
	fheReady     bool
	initializing bool
	// attempted is set once initialization ran for the current connection
	attempted bool
	// generation changes on every connect and disconnect so a late
	// initialization result can't leak into a newer connection
	generation uint64
}

type NewGateOptions struct {
	FHE         chain.Initializer
	Broadcaster *status.Broadcaster
}

func NewGate(opts NewGateOptions) *Gate {
	return &Gate{
		fhe:         opts.FHE,
		broadcaster: opts.Broadcaster,
		logger:      log.With("component", "session"),
	}
}

// Connect records the wallet connection and runs FHE initialization.
// Connecting an already connected address is a no-op; a different
// address starts a new connection.
func (g *Gate) Connect(ctx context.Context, address string) error {
	if address == "" {
		return fmt.Errorf("wallet address is required")
	}

	g.lock.Lock()
	if g.connected && g.address == address {
		g.lock.Unlock()
		return nil
	}
	g.connected = true
	g.address = address
	g.fheReady = false
	g.initializing = false
	g.attempted = false
	g.generation++
	g.lock.Unlock()

	g.logger.Info("Wallet %s connected", address)
	return g.Initialize(ctx)
}

// Initialize starts the FHE service if the gate is connected and no
// attempt has been made for this connection. Otherwise it does nothing.
func (g *Gate) Initialize(ctx context.Context) error {
	g.lock.Lock()
	if !g.connected || g.fheReady || g.initializing || g.attempted {
		g.lock.Unlock()
		return nil
	}
	g.initializing = true
	g.attempted = true
	generation := g.generation
	g.lock.Unlock()

	// The attempt is spent once started, so a caller going away must not
	// abort it.
	g.logger.Debug("Initializing FHE service")
	err := g.fhe.Initialize(context.WithoutCancel(ctx))

	g.lock.Lock()
	defer g.lock.Unlock()
	if generation != g.generation {
		g.logger.Debug("Discarding FHE initialization result of a previous connection")
		return nil
	}
	g.initializing = false
	if err != nil {
		g.logger.Error("FHE initialization failed: %v", err)
		if g.broadcaster != nil {
			g.broadcaster.Error(initFailedMessage)
		}
		return &InitializationFailedError{Err: err}
	}
	g.fheReady = true
	g.logger.Info("FHE service ready")
	return nil
}

// Disconnect resets the gate. The next Connect initializes again.
func (g *Gate) Disconnect() {
	g.lock.Lock()
	defer g.lock.Unlock()

	if !g.connected {
		return
	}
	g.logger.Info("Wallet %s disconnected", g.address)
	g.connected = false
	g.address = ""
	g.fheReady = false
	g.initializing = false
	g.attempted = false
	g.generation++
}

func (g *Gate) State() State {
	g.lock.Lock()
	defer g.lock.Unlock()
	return State{
		Connected:    g.connected,
		FHEReady:     g.fheReady,
		Initializing: g.initializing,
		Address:      g.address,
	}
}

func (g *Gate) Phase() Phase {
	return g.State().Phase()
}

func (g *Gate) Ready() bool {
	return g.Phase() == PhaseReady
}

func (g *Gate) Connected() bool {
	return g.State().Connected
}

func (g *Gate) Address() string {
	return g.State().Address
}
