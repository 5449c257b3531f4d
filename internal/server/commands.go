package server

import (
	"encoding/json"
	"errors"
	"log"

	"hotseat/internal/game"
)

type createSessionRequest struct {
	Username  string `json:"username" validate:"required,playername"`
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
}

type joinSessionRequest struct {
	Username  string `json:"username" validate:"required,playername"`
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
}

type setQuestionRequest struct {
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
	Question  string `json:"question" validate:"required,roundquestion"`
	Answer    string `json:"answer" validate:"required,roundanswer"`
}

type startGameRequest struct {
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
}

type submitGuessRequest struct {
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
	Guess     string `json:"guess" validate:"required,roundguess"`
}

type startNextRoundRequest struct {
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
}

type chatMessageRequest struct {
	SessionID string `json:"sessionId" validate:"required,sessioncode"`
	Message   string `json:"message" validate:"required,chatmessage"`
}

var sessionFieldMessages = map[string]string{
	"Username":  "username must be 1-20 characters",
	"SessionID": "session id must be 3-20 characters",
	"Question":  "question must be 1-200 characters",
	"Answer":    "answer must be 1-120 characters",
	"Guess":     "guess must be 1-120 characters",
	"Message":   "message must be 1-500 characters",
}

// dispatch routes one inbound websocket frame through the closed command
// set. Unknown types are rejected rather than reflected into handlers.
func (s *Server) dispatch(connectionID string, raw []byte) {
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.commandFailed(connectionID, "", game.Validation("malformed message"))
		return
	}

	var err error
	switch msg.Type {
	case "create_session":
		var req createSessionRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.CreateSession(req.Username, req.SessionID, connectionID)
		}
	case "join_session":
		var req joinSessionRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.JoinSession(req.Username, req.SessionID, connectionID)
		}
	case "set_question":
		var req setQuestionRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.SetQuestion(req.SessionID, connectionID, req.Question, req.Answer)
		}
	case "start_game":
		var req startGameRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.StartRound(req.SessionID, connectionID)
		}
	case "submit_guess":
		var req submitGuessRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.SubmitGuess(req.SessionID, connectionID, req.Guess)
		}
	case "start_next_round":
		var req startNextRoundRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.StartNextRound(req.SessionID, connectionID)
		}
	case "chat_message":
		var req chatMessageRequest
		if err = decodeCommand(msg.Data, &req); err == nil {
			err = s.coord.Chat(req.SessionID, connectionID, req.Message)
		}
	default:
		err = game.Validation("unknown command type")
	}
	if err != nil {
		s.commandFailed(connectionID, msg.Type, err)
	}
}

func decodeCommand(data json.RawMessage, req any) error {
	if len(data) == 0 {
		return game.Validation("command payload is required")
	}
	if err := json.Unmarshal(data, req); err != nil {
		return game.Validation("malformed command payload")
	}
	return checkRequest(req, sessionFieldMessages)
}

func (s *Server) commandFailed(connectionID, command string, err error) {
	var internal *game.InternalError
	message := err.Error()
	if errors.As(err, &internal) {
		log.Printf("command failed conn=%s command=%s err=%v", connectionID, command, err)
		message = "something went wrong, please try again"
	}
	s.hub.ToConnection(connectionID, wsMessage{Type: "error", Data: errorPayload{Message: message}})
}
