package logging

import "strings"

// FormatSubject builds the uid/session/state subject string used in console
// output: the pretty handler leads each line with it when the session
// fields are present, and cmd/transcodesched reuses it for progress
// descriptions.
func FormatSubject(uid, sessionKey, state string) string {
	uid = strings.TrimSpace(uid)
	sessionKey = strings.TrimSpace(sessionKey)
	state = strings.TrimSpace(state)
	parts := make([]string, 0, 3)
	if uid != "" {
		parts = append(parts, "uid "+uid)
	}
	switch {
	case sessionKey != "" && state != "":
		parts = append(parts, sessionKey+" ("+state+")")
	case sessionKey != "":
		parts = append(parts, sessionKey)
	case state != "":
		parts = append(parts, state)
	}
	return strings.Join(parts, " · ")
}
