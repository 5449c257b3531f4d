package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"hotseat/internal/db"
	"hotseat/internal/game"
	"hotseat/internal/web"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Home().Render(r.Context(), w); err != nil {
		log.Printf("home render failed err=%v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSessionSubroutes(w http.ResponseWriter, r *http.Request) {
	sessionID, action, ok := parseSessionPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch action {
	case "":
		s.handleSessionSnapshot(w, sessionID)
	case "events":
		s.handleSessionEvents(w, sessionID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type sessionSnapshotResponse struct {
	SessionID          string       `json:"sessionId"`
	Status             string       `json:"status"`
	GameMasterID       string       `json:"gameMasterId"`
	RequiresGameMaster bool         `json:"requiresGameMaster"`
	CurrentQuestion    string       `json:"currentQuestion,omitempty"`
	Winner             string       `json:"winner,omitempty"`
	RoundStartedAt     *time.Time   `json:"roundStartedAt,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	Players            []playerInfo `json:"players"`
}

// handleSessionSnapshot reports the public view of a session. The stored
// answer never leaves the server here.
func (s *Server) handleSessionSnapshot(w http.ResponseWriter, sessionID string) {
	sess, err := s.coord.Snapshot(sessionID)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionSnapshotResponse{
		SessionID:          sess.ID,
		Status:             sess.Status,
		GameMasterID:       sess.GameMasterID,
		RequiresGameMaster: sess.RequiresGameMaster,
		CurrentQuestion:    sess.CurrentQuestion,
		Winner:             sess.Winner,
		RoundStartedAt:     sess.RoundStartedAt,
		CreatedAt:          sess.CreatedAt,
		UpdatedAt:          sess.UpdatedAt,
		Players:            playersPayload(sess),
	})
}

type sessionEventResponse struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, sessionID string) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "event history is not enabled")
		return
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	var rows []db.Event
	if err := s.db.Where("session_id = ?", id).Order("id asc").Find(&rows).Error; err != nil {
		log.Printf("event list failed session=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	events := make([]sessionEventResponse, 0, len(rows))
	for _, row := range rows {
		events = append(events, sessionEventResponse{
			Type:      row.Type,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func writeCommandError(w http.ResponseWriter, err error) {
	var (
		validation *game.ValidationError
		notFound   *game.NotFoundError
		authz      *game.AuthorizationError
		state      *game.StateConflictError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &authz):
		writeError(w, http.StatusForbidden, authz.Message)
	case errors.As(err, &state):
		writeError(w, http.StatusConflict, state.Message)
	default:
		log.Printf("request failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}
