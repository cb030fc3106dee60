package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/hideseek/pkg/api/handlers"
	"github.com/cbodonnell/hideseek/pkg/api/middleware"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/messages"
	"github.com/cbodonnell/hideseek/pkg/status"
	"github.com/cbodonnell/hideseek/pkg/workers"
	"github.com/gorilla/mux"
)

// Game is what the API serves. It adds the status subscription the
// stream needs to the operations of the handlers.
type Game interface {
	handlers.Game
	SubscribeStatus(handler status.Handler) (unsubscribe func())
}

type APIServer struct {
	server      *http.Server
	tls         *TLSConfig
	game        Game
	streams     *workers.BroadcastMessageWorker
	publishChan chan<- workers.BroadcastMessage
	refreshChan chan<- struct{}
	unsubscribe func()
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port int
	TLS  *TLSConfig
	Game Game
	// Streams fans messages out to websocket subscribers
	Streams *workers.BroadcastMessageWorker
	// PublishChan feeds Streams. Sends never block; a full channel drops.
	PublishChan chan<- workers.BroadcastMessage
	// RefreshChan requests an event refresh whenever a stream client
	// connects. Optional.
	RefreshChan chan<- struct{}
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	s := &APIServer{
		tls:         opts.TLS,
		game:        opts.Game,
		streams:     opts.Streams,
		publishChan: opts.PublishChan,
		refreshChan: opts.RefreshChan,
	}
	s.unsubscribe = opts.Game.SubscribeStatus(func(current status.TransactionStatus) {
		s.publish(workers.BroadcastMessage{Type: messages.MessageTypeStatus, Message: current})
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: s.Router(),
	}
	return s
}

// Router returns the routes of the API.
func (s *APIServer) Router() *mux.Router {
	g := s.game
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware())

	r.HandleFunc("/session/connect", s.publishing(handlers.HandleConnect(g))).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/session/disconnect", s.publishing(handlers.HandleDisconnect(g))).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/session", handlers.HandleGetSession(g)).Methods(http.MethodGet)
	r.HandleFunc("/events", handlers.HandleListEvents(g)).Methods(http.MethodGet)
	r.HandleFunc("/events", s.publishing(handlers.HandleCreateEvent(g))).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/events/{id}", handlers.HandleGetEvent(g)).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}/trigger", s.publishing(handlers.HandleTriggerEvent(g))).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/system/check", handlers.HandleCheckAvailability(g)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/players", handlers.HandleListPlayers(g)).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", handlers.HandleDashboard(g)).Methods(http.MethodGet)
	r.HandleFunc("/history", handlers.HandleHistory(g)).Methods(http.MethodGet)
	r.HandleFunc("/move", handlers.HandleMove(g)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/status", handlers.HandleGetStatus(g)).Methods(http.MethodGet)
	r.HandleFunc("/status/ws", s.handleStream).Methods(http.MethodGet)
	return r
}

// publishing pushes the session and the event set to stream subscribers
// after next handled a request that may have changed them.
func (s *APIServer) publishing(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r)
		s.publish(workers.BroadcastMessage{Type: messages.MessageTypeSession, Message: s.game.Session()})
		s.publish(workers.BroadcastMessage{Type: messages.MessageTypeEvents, Message: handlers.NewEventViews(s.game.Events())})
	}
}

func (s *APIServer) publish(msg workers.BroadcastMessage) {
	if s.publishChan == nil {
		return
	}
	select {
	case s.publishChan <- msg:
	default:
		log.Warn("Stream channel full, dropping %s message", msg.Type)
	}
}

// Start starts the APIServer
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("API server error: %v", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	s.unsubscribe()
	return s.server.Shutdown(ctx)
}
