package server

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebsocket upgrades the connection and assigns it the ephemeral
// connection id that identifies the caller for its lifetime.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed err=%v", err)
		return
	}
	connectionID := uuid.NewString()
	s.hub.Register(connectionID, conn)
	log.Printf("ws connected conn=%s", connectionID)
	go s.readLoop(connectionID, conn)
}

func (s *Server) readLoop(connectionID string, conn *websocket.Conn) {
	defer func() {
		s.hub.Unregister(connectionID)
		s.coord.Disconnect(connectionID)
		log.Printf("ws disconnected conn=%s", connectionID)
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(connectionID, raw)
	}
}
