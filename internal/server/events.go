package server

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotseat/internal/db"
)

// EventSink records session history. Append is best-effort: a failed
// write is logged and never fails the command that produced it.
type EventSink interface {
	Append(sessionID, eventType string, payload EventPayload)
}

type EventPayload struct {
	Username     string `json:"username,omitempty"`
	GameMasterID string `json:"gameMasterId,omitempty"`
	Question     string `json:"question,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Winner       string `json:"winner,omitempty"`
	Correct      bool   `json:"correct,omitempty"`
	AttemptsLeft int    `json:"attemptsLeft,omitempty"`
	Reconnected  bool   `json:"reconnected,omitempty"`
}

type noopEventSink struct{}

func (noopEventSink) Append(string, string, EventPayload) {}

type dbEventSink struct {
	conn *gorm.DB
}

func (s *dbEventSink) Append(sessionID, eventType string, payload EventPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("event marshal failed session=%s type=%s err=%v", sessionID, eventType, err)
		return
	}
	event := db.Event{
		SessionID: sessionID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
	}
	if err := s.conn.Create(&event).Error; err != nil {
		log.Printf("event append failed session=%s type=%s err=%v", sessionID, eventType, err)
	}
}
