// Package bridge exposes a store.Store to remote observers over a
// WebSocket.
//
// Each connection receives the current snapshot of both facets, then an
// event whenever a facet changes. Events carry the facet's state at the
// time they are sent, so the last event for a facet always matches it. Clients send intents that are forwarded to the
// store without waiting for the outcome; the outcome arrives later as
// facet events like any other transition.
package bridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum intent size allowed from peer
	maxMessageSize = 4096

	// Events buffered per connection before new ones are dropped
	sendBuffer = 32
)

// Path is where the WebSocket endpoint is mounted
const Path = "/ws"

// Bridge serves WebSocket observers of one store
type Bridge struct {
	store   *store.Store
	profile prediction.Input

	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// New creates a bridge for s. profile is used for predict intents that
// carry no input of their own.
func New(s *store.Store, profile prediction.Input) *Bridge {
	return &Bridge{
		store:   s,
		profile: profile,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Clients returns the number of connected observers
func (b *Bridge) Clients() int {
	return int(b.clients.Load())
}

// Handler returns a router with the WebSocket endpoint and a health check
func (b *Bridge) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(Path, gin.WrapH(b))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": b.Clients()})
	})
	return r
}

// ServeHTTP upgrades the request and serves the observer until it
// disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		bridge: b,
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan any, sendBuffer),
		done:   make(chan struct{}),
	}

	b.clients.Add(1)
	logging.LogConnection(c.remote, "observer_connected")
	defer func() {
		b.clients.Add(-1)
		logging.LogConnection(c.remote, "observer_disconnected")
	}()

	c.run()
}

// client is one connected observer
type client struct {
	bridge *Bridge
	conn   *websocket.Conn
	remote string

	send chan any
	done chan struct{}

	// mu orders snapshot reads with their pushes
	mu         sync.Mutex
	device     cursor
	prediction cursor
}

func (c *client) run() {
	s := c.bridge.store

	// Subscribe before the first push so no transition falls in between.
	// Callbacks ignore the snapshot they are handed and send the current
	// one, so the last event always matches the facet.
	unsubDevice := s.Device().Subscribe(func(store.Snapshot[*aircon.DeviceState]) {
		c.syncDevice()
	})
	unsubPrediction := s.Prediction().Subscribe(func(store.Snapshot[*prediction.Result]) {
		c.syncPrediction()
	})

	c.syncDevice()
	c.syncPrediction()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump()

	unsubDevice()
	unsubPrediction()
	close(c.done)
	<-writerDone
	_ = c.conn.Close()
}

func (c *client) syncDevice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.bridge.store.Device().Snapshot()
	if c.device.seen(snap.Version) {
		return
	}
	c.push(deviceEvent(snap))
}

func (c *client) syncPrediction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.bridge.store.Prediction().Snapshot()
	if c.prediction.seen(snap.Version) {
		return
	}
	c.push(predictionEvent(snap))
}

// cursor remembers the last facet version sent to an observer
type cursor struct {
	sent    bool
	version uint64
}

// seen reports whether version was already sent and records it otherwise.
// Reads happen under the client lock, so versions never go backwards.
func (k *cursor) seen(version uint64) bool {
	if k.sent && version == k.version {
		return true
	}
	k.sent = true
	k.version = version
	return false
}

// push queues an event without blocking the store. A full queue means
// the observer is not keeping up; the event is dropped.
func (c *client) push(v any) {
	select {
	case <-c.done:
	case c.send <- v:
	default:
		logging.Warn("Observer queue full, dropping event",
			zap.String("remote_addr", c.remote),
		)
	}
}

func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Observer connection lost",
					zap.String("remote_addr", c.remote),
					zap.Error(err),
				)
			}
			return
		}

		var in Intent
		if err := json.Unmarshal(data, &in); err != nil {
			c.push(ErrorEvent{Error: "invalid intent: " + err.Error()})
			continue
		}

		logging.Debug("Intent received",
			zap.String("remote_addr", c.remote),
			zap.String("op", in.Op),
		)
		if err := c.bridge.dispatch(in); err != nil {
			c.push(ErrorEvent{Op: in.Op, Error: err.Error()})
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case v := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				logging.Info("Observer write failed",
					zap.String("remote_addr", c.remote),
					zap.Error(err),
				)
				_ = c.conn.Close()
				<-c.done
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.conn.Close()
				<-c.done
				return
			}
		}
	}
}
