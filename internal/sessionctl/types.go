package sessionctl

import "fmt"

// OfflineUID is the pseudo-UID used for background sessions that have no
// owning foreground app. It always sorts behind every known foreground UID
// and is never promoted by a top-UID notification.
const OfflineUID int32 = -1

// Key identifies a session. It is globally unique and is the primary
// identifier used by every controller entry point.
type Key struct {
	ClientID  int64
	SessionID int32
}

func (k Key) String() string {
	return fmt.Sprintf("{client:%d, session:%d}", k.ClientID, k.SessionID)
}

// State is a session's position in its lifecycle.
type State int

const (
	NotStarted State = iota
	Running
	Paused
	Finished
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	case Cancelled:
		return "Cancelled"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Request is the opaque job description passed through to the Transcoder
// verbatim. The controller never inspects it.
type Request any

// ClientCallback is the non-owning notification sink held by a session. A
// session's callback may be nil at any moment once the owning client has
// gone away; the controller must treat that as "drop the notification
// silently", never as an error.
type ClientCallback interface {
	OnTranscodingStarted(sessionID int32)
	OnTranscodingPaused(sessionID int32)
	OnTranscodingResumed(sessionID int32)
	OnTranscodingFinished(sessionID int32)
	OnTranscodingFailed(sessionID int32, err TranscoderErrorCode)
	OnProgressUpdate(sessionID int32, progress int32)
	OnResumePending(sessionID int32)
}

// Session is one accepted transcoding job.
type Session struct {
	Key          Key
	UID          int32
	State        State
	LastProgress int32
	Request      Request
	Callback     ClientCallback
}

func newSession(key Key, uid int32, request Request, callback ClientCallback) *Session {
	return &Session{
		Key:      key,
		UID:      uid,
		State:    NotStarted,
		Request:  request,
		Callback: callback,
	}
}
