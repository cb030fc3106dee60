package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/messages"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Encoding selects the frame format of a stream.
type Encoding string

const (
	// EncodingZstd sends binary frames of zstd-compressed JSON.
	EncodingZstd Encoding = "zstd"
	// EncodingJSON sends plain JSON text frames.
	EncodingJSON Encoding = "json"
)

// WSConn is a stream subscriber. Writes are serialized.
type WSConn struct {
	conn     *websocket.Conn
	encoding Encoding
	lock     sync.Mutex
}

// Upgrade switches the request to a websocket.
func Upgrade(w http.ResponseWriter, r *http.Request, encoding Encoding) (*WSConn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade to WebSocket: %v", err)
	}
	if encoding == "" {
		encoding = EncodingZstd
	}
	log.Debug("New WebSocket connection from %s", conn.RemoteAddr().String())
	return &WSConn{conn: conn, encoding: encoding}, nil
}

// Send writes msg, failing if the peer does not accept it in time.
func (c *WSConn) Send(msg *messages.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if c.encoding == EncodingJSON {
		return WriteJSONMessageToWS(c.conn, msg)
	}
	return WriteMessageToWS(c.conn, msg)
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

// Serve reads from the connection until it closes or ctx is done. Pings
// are answered; every other client message is ignored.
func (c *WSConn) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		message, err := c.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("Error reading WebSocket message from %s: %v", c.conn.RemoteAddr().String(), err)
			}
			log.Trace("Connection closed for %s", c.conn.RemoteAddr().String())
			return
		}

		switch message.Type {
		case messages.MessageTypePing:
			if err := c.Send(&messages.Message{Type: messages.MessageTypePong}); err != nil {
				log.Warn("Failed to answer ping: %v", err)
				return
			}
		default:
			log.Trace("Ignoring %s message from stream client", message.Type)
		}
	}
}

func (c *WSConn) read() (*messages.Message, error) {
	if c.encoding == EncodingJSON {
		msg := &messages.Message{}
		if err := c.conn.ReadJSON(msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
	return ReadMessageFromWS(c.conn)
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// WriteJSONMessageToWS writes a Message as a JSON text frame
func WriteJSONMessageToWS(conn *websocket.Conn, msg *messages.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(conn *websocket.Conn) (*messages.Message, error) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(message)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
