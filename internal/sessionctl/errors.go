package sessionctl

import "errors"

// Sentinel errors returned by the controller's public entry points. Callers
// should compare with errors.Is; messages may gain context via fmt.Errorf's
// %w wrapping but the sentinel identity is what's load-bearing.
var (
	// ErrAlreadyExists is returned by Submit when (ClientID, SessionID) is
	// already present in the registry. No state changes.
	ErrAlreadyExists = errors.New("sessionctl: session already exists")

	// ErrNotFound is returned by Cancel and GetSession for an unknown key.
	// No state changes.
	ErrNotFound = errors.New("sessionctl: session not found")
)
