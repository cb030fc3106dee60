package api

import (
	"net/http"

	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/messages"
	"github.com/cbodonnell/hideseek/pkg/network"
)

// handleStream upgrades to a websocket that receives every status change.
// The current status is sent first. ?format=json selects text frames.
func (s *APIServer) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.streams == nil {
		http.Error(w, "Streaming disabled", http.StatusNotFound)
		return
	}

	encoding := network.EncodingZstd
	if r.URL.Query().Get("format") == string(network.EncodingJSON) {
		encoding = network.EncodingJSON
	}
	conn, err := network.Upgrade(w, r, encoding)
	if err != nil {
		log.Error("%v", err)
		return
	}
	defer conn.Close()

	// Registered before the snapshot so no change in between is missed.
	unregister := s.streams.Register(conn)
	defer unregister()

	current, err := messages.New(messages.MessageTypeStatus, s.game.Status())
	if err != nil {
		log.Error("Failed to build status message: %v", err)
		return
	}
	if err := conn.Send(current); err != nil {
		log.Warn("Failed to send current status: %v", err)
		return
	}
	s.requestRefresh()

	conn.Serve(r.Context())
}

// requestRefresh asks the refresh worker to reload the events. A pending
// request already covers this one.
func (s *APIServer) requestRefresh() {
	if s.refreshChan == nil {
		return
	}
	select {
	case s.refreshChan <- struct{}{}:
	default:
	}
}
