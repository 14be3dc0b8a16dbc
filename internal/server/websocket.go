// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pdiddy/frd-engine/internal/slider"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is sent to websocket clients: a snapshot on connect, then one
// event per slider change.
type Message struct {
	Type    string         `json:"type"`
	Sliders []slider.State `json:"sliders,omitempty"`
	Event   *slider.Event  `json:"event,omitempty"`
}

// setMessage is accepted from clients to move a slider.
type setMessage struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	websocketClients.Inc()
	defer websocketClients.Dec()

	events, cancel := s.sliders.Subscribe()
	defer cancel()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Type: "snapshot", Sliders: s.sliders.Snapshot()}); err != nil {
		return
	}

	done := make(chan struct{})
	go s.readSets(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Message{Type: "event", Event: &ev}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readSets applies slider moves sent by the client until the connection
// closes.
func (s *Server) readSets(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg setMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		if _, err := s.sliders.Set(msg.ID, msg.Value); err != nil {
			log.Printf("websocket set: %v", err)
		}
	}
}
