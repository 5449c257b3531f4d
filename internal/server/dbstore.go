package server

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotseat/internal/db"
	"hotseat/internal/game"
)

// dbStore persists session aggregates to Postgres through gorm. The
// session row is upserted wholesale; player rows are keyed by
// (session_id, username) so a reconnecting player updates in place.
type dbStore struct {
	conn *gorm.DB
}

func newDBStore(conn *gorm.DB) *dbStore {
	return &dbStore{conn: conn}
}

func (s *dbStore) Load(id string) (*game.Session, error) {
	var record db.Session
	if err := s.conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var players []db.Player
	if err := s.conn.Where("session_id = ?", id).Order("position asc").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("load players for %s: %w", id, err)
	}

	sess := &game.Session{
		ID:                 record.ID,
		Status:             record.Status,
		GameMasterID:       record.GameMasterID,
		RequiresGameMaster: record.RequiresGameMaster,
		CurrentQuestion:    record.CurrentQuestion,
		CurrentAnswer:      record.CurrentAnswer,
		Winner:             record.Winner,
		RoundStartedAt:     record.RoundStartedAt,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	for _, p := range players {
		sess.Players = append(sess.Players, game.Player{
			ConnectionID:     p.ConnectionID,
			Username:         p.Username,
			Score:            p.Score,
			AttemptsUsed:     p.AttemptsUsed,
			Connected:        p.Connected,
			LastGameMasterAt: p.LastGameMasterAt,
			LastActivityAt:   p.LastActivityAt,
		})
	}
	return sess, nil
}

func (s *dbStore) Save(sess *game.Session) error {
	return s.conn.Transaction(func(tx *gorm.DB) error {
		record := db.Session{
			ID:                 sess.ID,
			Status:             string(sess.Status),
			GameMasterID:       sess.GameMasterID,
			RequiresGameMaster: sess.RequiresGameMaster,
			CurrentQuestion:    sess.CurrentQuestion,
			CurrentAnswer:      sess.CurrentAnswer,
			Winner:             sess.Winner,
			RoundStartedAt:     sess.RoundStartedAt,
			CreatedAt:          sess.CreatedAt,
			UpdatedAt:          sess.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
			return fmt.Errorf("save session %s: %w", sess.ID, err)
		}
		for i, p := range sess.Players {
			if err := persistPlayer(tx, sess.ID, i, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func persistPlayer(tx *gorm.DB, sessionID string, position int, p game.Player) error {
	row := db.Player{
		SessionID:        sessionID,
		Username:         p.Username,
		ConnectionID:     p.ConnectionID,
		Position:         position,
		Score:            p.Score,
		AttemptsUsed:     p.AttemptsUsed,
		Connected:        p.Connected,
		LastGameMasterAt: p.LastGameMasterAt,
		LastActivityAt:   p.LastActivityAt,
	}
	err := tx.Create(&row).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("insert player %s: %w", p.Username, err)
	}
	updates := map[string]any{
		"connection_id":       p.ConnectionID,
		"position":            position,
		"score":               p.Score,
		"attempts_used":       p.AttemptsUsed,
		"connected":           p.Connected,
		"last_game_master_at": p.LastGameMasterAt,
		"last_activity_at":    p.LastActivityAt,
	}
	err = tx.Model(&db.Player{}).
		Where("session_id = ? AND username = ?", sessionID, p.Username).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.Username, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *dbStore) Delete(id string) error {
	return s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&db.Event{}).Error; err != nil {
			return fmt.Errorf("delete events for %s: %w", id, err)
		}
		if err := tx.Where("session_id = ?", id).Delete(&db.Player{}).Error; err != nil {
			return fmt.Errorf("delete players for %s: %w", id, err)
		}
		if err := tx.Delete(&db.Session{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
		return nil
	})
}

func (s *dbStore) IDs() ([]string, error) {
	var ids []string
	if err := s.conn.Model(&db.Session{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	return ids, nil
}
