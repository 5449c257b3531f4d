package server

import (
	"context"
	"log"
	"time"
)

// RunCleanup sweeps expired and abandoned sessions until ctx is done.
func (s *Server) RunCleanup(ctx context.Context) {
	interval := s.cfg.SweepInterval()
	log.Printf("session cleanup running interval=%s retention=%s", interval, s.cfg.SessionRetention())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.coord.Sweep(time.Now().UTC())
		}
	}
}
