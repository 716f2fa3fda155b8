package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vanerueda/packsim/core/sim"
	"github.com/vanerueda/packsim/infra/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Driver is the subset of the simulation service the websocket layer drives.
type Driver interface {
	Reset(caseID int) error
	Snapshot() sim.Snapshot
}

// Handler manages WebSocket connections and routes client messages to the
// simulation driver.
type Handler struct {
	hub    *Hub
	driver Driver
	log    logger.Logger
}

func NewHandler(hub *Hub, driver Driver) *Handler {
	return &Handler{hub: hub, driver: driver, log: logger.New("ws-handler")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// New clients immediately see the current pack state.
	if msg, err := SnapshotMessage(h.driver.Snapshot()); err == nil {
		client.send <- msg
	}

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("websocket read: %v", err)
			}
			return
		}
		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.log.Warnf("invalid message: %v", err)
		return
	}

	switch env.Type {
	case "reset":
		var p ResetPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warnf("invalid reset payload: %v", err)
			return
		}
		if err := h.driver.Reset(p.Case); err != nil {
			c.send <- errorMessage(err.Error())
			return
		}
		if out, err := SnapshotMessage(h.driver.Snapshot()); err == nil {
			h.hub.Broadcast(out)
		}
	default:
		h.log.Debugf("unknown message type %q", env.Type)
	}
}
