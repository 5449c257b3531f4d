package server

import "strings"

func parseSessionPath(path string) (string, string, bool) {
	const prefix = "/api/sessions/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	sessionID := parts[0]
	if len(parts) == 1 {
		return sessionID, "", true
	}
	if len(parts) == 2 {
		return sessionID, parts[1], true
	}
	return "", "", false
}
