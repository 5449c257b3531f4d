package server

import (
	"net/http"

	"gorm.io/gorm"

	"hotseat/internal/config"
)

type Server struct {
	db    *gorm.DB
	hub   *wsHub
	cfg   config.Config
	coord *Coordinator
}

// New wires the coordinator against Postgres when a connection is given,
// or against the in-memory store when conn is nil.
func New(conn *gorm.DB, cfg config.Config) *Server {
	hub := newWSHub()
	var store SessionStore
	var events EventSink
	if conn == nil {
		store = newMemoryStore()
		events = noopEventSink{}
	} else {
		store = newDBStore(conn)
		events = &dbEventSink{conn: conn}
	}
	return &Server{
		db:    conn,
		hub:   hub,
		cfg:   cfg,
		coord: NewCoordinator(cfg, store, hub, events),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/sessions/", s.handleSessionSubroutes)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}
