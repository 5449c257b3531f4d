package game

import (
	"strings"
	"unicode/utf8"
)

const (
	minSessionIDLength = 3
	maxSessionIDLength = 20
	maxUsernameLength  = 20
	maxQuestionLength  = 200
	maxAnswerLength    = 120
	maxGuessLength     = 120
	maxChatLength      = 500
)

// ValidateSessionID normalizes a session id to its storage form
// (lowercased, trimmed) and checks the length bounds.
func ValidateSessionID(id string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if normalized == "" {
		return "", validationf("session id is required")
	}
	if length := utf8.RuneCountInString(normalized); length < minSessionIDLength || length > maxSessionIDLength {
		return "", validationf("session id must be %d-%d characters", minSessionIDLength, maxSessionIDLength)
	}
	return normalized, nil
}

func ValidateUsername(username string) (string, error) {
	trimmed := normalizeText(username)
	if trimmed == "" {
		return "", validationf("username is required")
	}
	if utf8.RuneCountInString(trimmed) > maxUsernameLength {
		return "", validationf("username must be %d characters or fewer", maxUsernameLength)
	}
	return trimmed, nil
}

func ValidateQuestion(question string) (string, error) {
	trimmed := normalizeText(question)
	if trimmed == "" {
		return "", validationf("question is required")
	}
	if utf8.RuneCountInString(trimmed) > maxQuestionLength {
		return "", validationf("question must be %d characters or fewer", maxQuestionLength)
	}
	return trimmed, nil
}

func ValidateAnswer(answer string) (string, error) {
	trimmed := normalizeText(answer)
	if trimmed == "" {
		return "", validationf("answer is required")
	}
	if utf8.RuneCountInString(trimmed) > maxAnswerLength {
		return "", validationf("answer must be %d characters or fewer", maxAnswerLength)
	}
	return trimmed, nil
}

func ValidateGuess(guess string) (string, error) {
	trimmed := strings.TrimSpace(guess)
	if trimmed == "" {
		return "", validationf("guess is required")
	}
	if utf8.RuneCountInString(trimmed) > maxGuessLength {
		return "", validationf("guess must be %d characters or fewer", maxGuessLength)
	}
	return trimmed, nil
}

// ValidateChatMessage trims only. Chat is relayed verbatim otherwise.
func ValidateChatMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", validationf("message is required")
	}
	if utf8.RuneCountInString(trimmed) > maxChatLength {
		return "", validationf("message must be %d characters or fewer", maxChatLength)
	}
	return trimmed, nil
}

// NormalizeAnswer is applied to both the stored answer and every submitted
// guess before comparison: lowercase, surrounding whitespace trimmed.
func NormalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
