package storage

import (
	"path"
	"strings"
)

const sessionsPrefix = "sessions/"

// Object names inside a session folder.
const (
	EventsObject = "events.json"
	ReportObject = "report.json"
)

// SessionKey returns the object name of a session artifact.
func SessionKey(sessionID, name string) string {
	return path.Join("sessions", sessionID, name)
}

// SessionPrefix returns the prefix shared by every object of a session.
func SessionPrefix(sessionID string) string {
	return sessionsPrefix + sessionID + "/"
}

// SessionOf extracts the session ID from an object name, if it has one.
func SessionOf(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, sessionsPrefix)
	if !ok {
		return "", false
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
