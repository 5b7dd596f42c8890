// Package telemetry broadcasts per-frame debug state (register file,
// PPU mode, timer counters) to connected websocket clients, following
// the hub/client broadcast pattern the reference host uses to fan
// frames out to multiple viewers.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Snapshot is one tick of inspectable state, filled in by the host
// from internal/gameboy.Core on whatever cadence it chooses (typically
// once per Core.Run call).
type Snapshot struct {
	PC, SP           uint16
	A, F, B, C       uint8
	D, E, H, L       uint8
	LCDC, STAT, LY   uint8
	DIV, TIMA        uint8
	IE, IF           uint8
	FrameCycles      int
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out Snapshot broadcasts to every connected client over a
// websocket. The zero value is not usable; construct with NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
}

// NewHub returns a Hub; it starts no goroutine. Callers must mount
// Handler on an http.ServeMux and call Run in a goroutine of the
// caller's choosing, mirroring the reference host's hub.run split.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]chan []byte),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
	}
	return h
}

// Run services registration and broadcast until ctx-less shutdown via
// closing stop. It is meant to be run in its own goroutine.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = make(chan []byte, 16)
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			if ch, ok := h.clients[conn]; ok {
				close(ch)
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			conn.Close()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn, ch := range h.clients {
				select {
				case ch <- msg:
				default: // slow client, drop this frame's telemetry
					delete(h.clients, conn)
					close(ch)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish marshals snap to JSON and queues it for every connected
// client. Safe to call from the emulation goroutine every frame.
func (h *Hub) Publish(snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- b:
	default: // hub backed up, drop this frame rather than block emulation
	}
	return nil
}

// Handler upgrades incoming HTTP connections to websockets and pumps
// queued broadcasts to each one until it disconnects.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.register <- conn
	h.mu.Lock()
	ch := h.clients[conn]
	h.mu.Unlock()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
