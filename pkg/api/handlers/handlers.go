package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cbodonnell/hideseek/pkg/game"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/orchestrators"
	"github.com/cbodonnell/hideseek/pkg/session"
	"github.com/cbodonnell/hideseek/pkg/state"
	"github.com/cbodonnell/hideseek/pkg/status"
	"github.com/gorilla/mux"
)

// Game is the set of game operations exposed over HTTP.
type Game interface {
	Connect(ctx context.Context, address string) (*game.ConnectResult, error)
	Disconnect()
	Session() session.State
	Events() []types.GameEvent
	Event(id string) (types.GameEvent, bool)
	CreateEvent(ctx context.Context, req orchestrators.CreateRequest) (*orchestrators.CreateResult, error)
	TriggerEvent(ctx context.Context, id string) (*orchestrators.TriggerResult, error)
	CheckAvailability(ctx context.Context) (bool, error)
	Move(ctx context.Context) (types.Position, error)
	Rankings(ctx context.Context) ([]game.RankedPlayer, error)
	Dashboard(ctx context.Context) (*game.Dashboard, error)
	History() []state.HistoryEntry
	Status() status.TransactionStatus
}

// EventView is an event as the rendering layer sees it. The revealed
// value is only present once the event is triggered.
type EventView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	EncryptedLocation string `json:"encryptedLocation"`
	PublicRadius      int64  `json:"publicRadius"`
	Description       string `json:"description"`
	Creator           string `json:"creator"`
	Timestamp         int64  `json:"timestamp"`
	Triggered         bool   `json:"triggered"`
	RevealedValue     *int64 `json:"revealedValue,omitempty"`
}

func NewEventView(event types.GameEvent) EventView {
	view := EventView{
		ID:                event.ID,
		Name:              event.Name,
		EncryptedLocation: event.EncryptedLocation,
		PublicRadius:      event.PublicRadius,
		Description:       event.Description,
		Creator:           event.Creator,
		Timestamp:         event.Timestamp,
		Triggered:         event.Triggered,
	}
	if value, ok := event.Revealed(); ok {
		view.RevealedValue = &value
	}
	return view
}

func NewEventViews(events []types.GameEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, NewEventView(event))
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

// writeOperationError maps orchestrator errors onto status codes.
func writeOperationError(w http.ResponseWriter, err error) {
	var triggerFailed *orchestrators.TriggerFailedError
	var creationFailed *orchestrators.CreationFailedError
	switch {
	case orchestrators.IsConnectionRequired(err):
		http.Error(w, "Connect wallet first", http.StatusUnauthorized)
	case orchestrators.IsNotReady(err):
		http.Error(w, "FHE not initialized", http.StatusServiceUnavailable)
	case errors.Is(err, orchestrators.ErrInFlight):
		http.Error(w, "Operation already in progress", http.StatusConflict)
	case errors.As(err, &creationFailed):
		if creationFailed.UserRejected {
			http.Error(w, "Transaction rejected", http.StatusBadRequest)
			return
		}
		http.Error(w, "Creation failed", http.StatusBadGateway)
	case errors.As(err, &triggerFailed):
		log.Debug("trigger failed with cause %s", triggerFailed.Cause)
		http.Error(w, "Trigger failed", http.StatusBadGateway)
	default:
		log.Error("unexpected operation error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type ConnectRequest struct {
	Address string `json:"address"`
}

func HandleConnect(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Address) == "" {
			http.Error(w, "Address is required", http.StatusBadRequest)
			return
		}

		result, err := g.Connect(r.Context(), req.Address)
		if err != nil {
			log.Error("failed to connect %s: %v", req.Address, err)
			http.Error(w, "Failed to connect wallet", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func HandleDisconnect(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Disconnect()
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleGetSession(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Session())
	}
}

func HandleListEvents(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NewEventViews(g.Events()))
	}
}

func HandleGetEvent(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		event, ok := g.Event(id)
		if !ok {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, NewEventView(event))
	}
}

// HandleCreateEvent requires every field to be present; their content is
// parsed leniently further down.
func HandleCreateEvent(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orchestrators.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Location == "" || req.Radius == "" {
			http.Error(w, "Name, location and radius are required", http.StatusBadRequest)
			return
		}

		result, err := g.CreateEvent(r.Context(), req)
		if err != nil {
			writeOperationError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func HandleTriggerEvent(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		result, err := g.TriggerEvent(r.Context(), id)
		if err != nil {
			writeOperationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func HandleCheckAvailability(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available, err := g.CheckAvailability(r.Context())
		if err != nil {
			http.Error(w, "Availability check failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"available": available})
	}
}

func HandleListPlayers(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankings, err := g.Rankings(r.Context())
		if err != nil {
			log.Error("failed to list players: %v", err)
			http.Error(w, "Failed to list players", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rankings)
	}
}

func HandleDashboard(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := g.Dashboard(r.Context())
		if err != nil {
			log.Error("failed to build dashboard: %v", err)
			http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

func HandleHistory(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.History())
	}
}

func HandleMove(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := g.Move(r.Context())
		if err != nil {
			log.Error("failed to move: %v", err)
			http.Error(w, "Failed to move", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

func HandleGetStatus(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Status())
	}
}
