package db

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	ID                 string    `gorm:"primaryKey;size:20"`
	Status             string    `gorm:"size:16;not null"`
	GameMasterID       string    `gorm:"size:64"`
	RequiresGameMaster bool      `gorm:"not null;default:false"`
	CurrentQuestion    string    `gorm:"size:280"`
	CurrentAnswer      string    `gorm:"size:140"`
	Winner             string    `gorm:"size:64"`
	RoundStartedAt     *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
	Players            []Player
	Events             []Event
}

type Player struct {
	ID               uint   `gorm:"primaryKey"`
	SessionID        string `gorm:"size:20;index;not null;uniqueIndex:idx_players_session_username"`
	Username         string `gorm:"size:64;not null;uniqueIndex:idx_players_session_username"`
	ConnectionID     string `gorm:"size:64;index"`
	Position         int    `gorm:"not null"`
	Score            int    `gorm:"not null;default:0"`
	AttemptsUsed     int    `gorm:"not null;default:0"`
	Connected        bool   `gorm:"not null;default:false"`
	LastGameMasterAt *time.Time
	LastActivityAt   time.Time `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	SessionID string         `gorm:"size:20;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
