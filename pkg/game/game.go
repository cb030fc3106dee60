// Package game ties the session gate, the event store and the
// orchestrators together behind the operations the rendering layer calls.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/constants"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/orchestrators"
	"github.com/cbodonnell/hideseek/pkg/repositories"
	"github.com/cbodonnell/hideseek/pkg/session"
	"github.com/cbodonnell/hideseek/pkg/state"
	"github.com/cbodonnell/hideseek/pkg/status"
)

type GameManager struct {
	reader       chain.ReadOnlyContract
	signers      SignerFactory
	signer       *sessionSigner
	broadcaster  *status.Broadcaster
	gate         *session.Gate
	store        *state.InMemoryEventStore
	history      *state.History
	players      repositories.Repository
	mapSink      chain.MapSink
	creator      *orchestrators.Creator
	triggerer    *orchestrators.Triggerer
	availability *orchestrators.AvailabilityChecker
	now          func() time.Time
	random       func() float64
	logger       *log.Logger
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Reader      chain.ReadOnlyContract
	Signers     SignerFactory
	FHE         chain.FHEService
	Broadcaster *status.Broadcaster
	Players     repositories.Repository
	// MapSink defaults to a RecordingMapSink
	MapSink chain.MapSink
	IDs     orchestrators.IDGenerator
	Now     func() time.Time
	// Random returns values in [0, 1); defaults to math/rand
	Random func() float64
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	broadcaster := opts.Broadcaster
	if broadcaster == nil {
		broadcaster = status.NewBroadcaster(status.NewBroadcasterOptions{})
	}
	players := opts.Players
	if players == nil {
		players = repositories.NewStaticRepository(opts.Now)
	}
	mapSink := opts.MapSink
	if mapSink == nil {
		mapSink = NewRecordingMapSink()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	random := opts.Random
	if random == nil {
		random = rand.Float64
	}

	gate := session.NewGate(session.NewGateOptions{FHE: opts.FHE, Broadcaster: broadcaster})
	store := state.NewInMemoryEventStore(state.NewInMemoryEventStoreOptions{Reader: opts.Reader, Broadcaster: broadcaster})
	history := state.NewHistory()
	signer := &sessionSigner{}

	return &GameManager{
		reader:      opts.Reader,
		signers:     opts.Signers,
		signer:      signer,
		broadcaster: broadcaster,
		gate:        gate,
		store:       store,
		history:     history,
		players:     players,
		mapSink:     mapSink,
		creator: orchestrators.NewCreator(orchestrators.NewCreatorOptions{
			Gate:     gate,
			Reader:   opts.Reader,
			Signer:   signer,
			FHE:      opts.FHE,
			Store:    store,
			History:  history,
			Notifier: broadcaster,
			IDs:      opts.IDs,
		}),
		triggerer: orchestrators.NewTriggerer(orchestrators.NewTriggererOptions{
			Gate:     gate,
			Reader:   opts.Reader,
			Signer:   signer,
			FHE:      opts.FHE,
			Store:    store,
			History:  history,
			Notifier: broadcaster,
		}),
		availability: orchestrators.NewAvailabilityChecker(opts.Reader, broadcaster),
		now:          now,
		random:       random,
		logger:       log.With("component", "game"),
	}
}

// ConnectResult describes the session after a wallet connected.
type ConnectResult struct {
	Session         session.State `json:"session"`
	ContractAddress string        `json:"contractAddress"`
	// InitError is set when the FHE service failed to start. The session
	// stays connected and events are still loaded.
	InitError string `json:"initError,omitempty"`
}

// Connect binds the wallet, initializes the FHE service and loads the
// events. Only a missing address or signer is an error; FHE and load
// failures are broadcast and leave the session usable for reading.
func (g *GameManager) Connect(ctx context.Context, address string) (*ConnectResult, error) {
	if address == "" {
		return nil, fmt.Errorf("wallet address is required")
	}
	signer, err := g.signers(address)
	if err != nil {
		return nil, fmt.Errorf("failed to bind signer for %s: %v", address, err)
	}
	g.signer.set(signer)

	if viewerAware, ok := g.players.(repositories.ViewerAware); ok {
		viewerAware.SetViewer(address)
	}

	result := &ConnectResult{}
	if err := g.gate.Connect(ctx, address); err != nil {
		g.logger.Warn("Continuing without FHE: %v", err)
		result.InitError = err.Error()
	}

	contractAddress, err := g.reader.Address(ctx)
	if err != nil {
		g.logger.Error("Failed to get contract address: %v", err)
	} else {
		result.ContractAddress = contractAddress
	}

	if err := g.store.Refresh(ctx); err != nil {
		g.logger.Warn("Events unavailable after connect: %v", err)
	}

	result.Session = g.gate.State()
	return result, nil
}

// Disconnect ends the session and drops the cached events. The history
// is kept until the process exits.
func (g *GameManager) Disconnect() {
	g.gate.Disconnect()
	g.signer.set(nil)
	g.store.Clear()
	if viewerAware, ok := g.players.(repositories.ViewerAware); ok {
		viewerAware.SetViewer("")
	}
}

func (g *GameManager) Session() session.State {
	return g.gate.State()
}

// InitializeFHE starts the FHE service if this connection has not
// attempted it yet.
func (g *GameManager) InitializeFHE(ctx context.Context) error {
	return g.gate.Initialize(ctx)
}

func (g *GameManager) Events() []types.GameEvent {
	return g.store.Events()
}

func (g *GameManager) Event(id string) (types.GameEvent, bool) {
	return g.store.Get(id)
}

func (g *GameManager) EventSummary() state.Summary {
	return g.store.Summary()
}

func (g *GameManager) RefreshEvents(ctx context.Context) error {
	if !g.gate.Connected() {
		return nil
	}
	return g.store.Refresh(ctx)
}

func (g *GameManager) CreateEvent(ctx context.Context, req orchestrators.CreateRequest) (*orchestrators.CreateResult, error) {
	return g.creator.Create(ctx, req)
}

func (g *GameManager) TriggerEvent(ctx context.Context, id string) (*orchestrators.TriggerResult, error) {
	return g.triggerer.Trigger(ctx, id)
}

func (g *GameManager) CheckAvailability(ctx context.Context) (bool, error) {
	return g.availability.Check(ctx)
}

// Move places the player at a random position around the map center.
// The position is presentation only and never reaches the contract.
func (g *GameManager) Move(ctx context.Context) (types.Position, error) {
	position := types.Position{
		Lat: constants.MapCenterLat + (g.random()-0.5)*constants.MoveSpread,
		Lng: constants.MapCenterLng + (g.random()-0.5)*constants.MoveSpread,
	}
	if err := g.mapSink.PlaceMarker(ctx, position); err != nil {
		return types.Position{}, fmt.Errorf("failed to place marker: %v", err)
	}
	g.history.Append(fmt.Sprintf("Moved to: %.4f, %.4f", position.Lat, position.Lng))
	return position, nil
}

func (g *GameManager) History() []state.HistoryEntry {
	return g.history.Entries()
}

func (g *GameManager) Status() status.TransactionStatus {
	return g.broadcaster.Current()
}

func (g *GameManager) SubscribeStatus(handler status.Handler) (unsubscribe func()) {
	return g.broadcaster.Subscribe(handler)
}

func (g *GameManager) Players(ctx context.Context) ([]types.PlayerData, error) {
	players, err := g.players.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %v", err)
	}
	return players, nil
}

type RankedPlayer struct {
	types.PlayerData
	Rank   int  `json:"rank"`
	Online bool `json:"online"`
}

// Rankings orders players by score, highest first.
func (g *GameManager) Rankings(ctx context.Context) ([]RankedPlayer, error) {
	players, err := g.Players(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	now := g.now().UnixMilli()
	ranked := make([]RankedPlayer, 0, len(players))
	for i, player := range players {
		ranked = append(ranked, RankedPlayer{
			PlayerData: player,
			Rank:       i + 1,
			Online:     now-player.LastActive < constants.OnlinePlayerWindow.Milliseconds(),
		})
	}
	return ranked, nil
}

type Dashboard struct {
	ActivePlayers   int   `json:"activePlayers"`
	TotalEvents     int   `json:"totalEvents"`
	TriggeredEvents int   `json:"triggeredEvents"`
	SkippedEvents   int   `json:"skippedEvents"`
	ViewerScore     int64 `json:"viewerScore"`
}

func (g *GameManager) Dashboard(ctx context.Context) (*Dashboard, error) {
	players, err := g.Players(ctx)
	if err != nil {
		return nil, err
	}
	summary := g.store.Summary()
	dashboard := &Dashboard{
		TotalEvents:     summary.Total,
		TriggeredEvents: summary.Triggered,
		SkippedEvents:   summary.Skipped,
	}

	now := g.now().UnixMilli()
	viewer := g.gate.Address()
	for _, player := range players {
		if now-player.LastActive < constants.ActivePlayerWindow.Milliseconds() {
			dashboard.ActivePlayers++
		}
		if viewer != "" && player.ID == viewer {
			dashboard.ViewerScore = player.Score
		}
	}
	return dashboard, nil
}
