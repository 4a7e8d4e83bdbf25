// Package telemetry exposes an optional debug HTTP+WebSocket server that
// broadcasts per-tick engine state to connected viewers. It never runs
// unless a host wires it in; the engine core has no dependency on it.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/fernglow/mascotcore/internal/log"
)

// message is one broadcast unit: pre-encoded JSON, fanned out to every
// connected client.
type message struct {
	data []byte
}

// hub is a thread-safe broadcast fan-out: one goroutine owns the client
// set, Broadcast is safe to call from the engine's tick goroutine without
// blocking on slow websocket writers.
type hub struct {
	name string

	clients    map[*client]bool
	broadcast  chan message
	register   chan *client
	unregister chan *client

	mu sync.RWMutex
}

func newHub(name string) *hub {
	return &hub{
		name:       name,
		clients:    make(map[*client]bool),
		broadcast:  make(chan message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run is the hub's event loop; call it in a goroutine before any client
// connects.
func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Info("telemetry: client connected", "hub", h.name, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Info("telemetry: client disconnected", "hub", h.name, "clients", n)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
					log.Warn("telemetry: dropped slow client", "hub", h.name)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastJSON marshals v and fans it out; a full broadcast buffer drops
// the update rather than block the caller.
func (h *hub) BroadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("telemetry: marshal failed", "hub", h.name, "err", err)
		return
	}
	select {
	case h.broadcast <- message{data: data}:
	default:
		log.Warn("telemetry: broadcast buffer full, dropping frame", "hub", h.name)
	}
}

func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
