package server

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotseat/internal/game"
)

var validate = newValidator()

// newValidator wires the domain checks into struct tags so inbound
// payloads are rejected with a field-level message before any session
// state is read.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	checks := map[string]func(string) (string, error){
		"sessioncode":   game.ValidateSessionID,
		"playername":    game.ValidateUsername,
		"roundquestion": game.ValidateQuestion,
		"roundanswer":   game.ValidateAnswer,
		"roundguess":    game.ValidateGuess,
		"chatmessage":   game.ValidateChatMessage,
	}
	for tag, check := range checks {
		check := check
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, err := check(fl.Field().String())
			return err == nil
		})
	}
	return v
}

// checkRequest maps the first failing field to its friendly message.
func checkRequest(req any, messages map[string]string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0].Field()
		if msg, ok := messages[field]; ok {
			return game.Validation(msg)
		}
		return game.Validation(strings.ToLower(field) + " is invalid")
	}
	return game.Validation("invalid request")
}
