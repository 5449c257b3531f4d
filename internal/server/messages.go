package server

import "hotseat/internal/game"

// wsMessage is the envelope for everything crossing the websocket, in
// both directions. Type names the event, Data carries its payload.
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type playerInfo struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
	Score        int    `json:"score"`
	AttemptsUsed int    `json:"attemptsUsed"`
	Connected    bool   `json:"connected"`
	IsGameMaster bool   `json:"isGameMaster"`
}

func playersPayload(sess *game.Session) []playerInfo {
	players := make([]playerInfo, 0, len(sess.Players))
	for _, p := range sess.Players {
		players = append(players, playerInfo{
			Username:     p.Username,
			ConnectionID: p.ConnectionID,
			Score:        p.Score,
			AttemptsUsed: p.AttemptsUsed,
			Connected:    p.Connected,
			IsGameMaster: p.ConnectionID == sess.GameMasterID && sess.GameMasterID != "",
		})
	}
	return players
}

type sessionAckPayload struct {
	SessionID       string       `json:"sessionId"`
	Username        string       `json:"username"`
	IsGameMaster    bool         `json:"isGameMaster"`
	Players         []playerInfo `json:"players,omitempty"`
	GameStatus      string       `json:"gameStatus,omitempty"`
	CurrentQuestion string       `json:"currentQuestion,omitempty"`
}

type playersUpdatePayload struct {
	Players      []playerInfo `json:"players"`
	GameMasterID string       `json:"gameMasterId"`
}

type gameStartedPayload struct {
	Question  string `json:"question"`
	TimeLimit int    `json:"timeLimit"`
}

type guessResultPayload struct {
	Correct      bool `json:"correct"`
	AttemptsLeft int  `json:"attemptsLeft"`
}

type gameEndedPayload struct {
	Reason  string       `json:"reason"`
	Winner  string       `json:"winner,omitempty"`
	Answer  string       `json:"answer"`
	Players []playerInfo `json:"players"`
}

type newGameMasterPayload struct {
	GameMasterID   string       `json:"gameMasterId"`
	GameMasterName string       `json:"gameMasterName"`
	Players        []playerInfo `json:"players"`
}

type noticePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type chatPayload struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}
